// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Flowgard FlowgardConfig `yaml:"flowgard"`
}

type FlowgardConfig struct {
	Log     LogConfig     `yaml:"log"`
	Serial  SerialConfig  `yaml:"serial"`
	Meter   MeterConfig   `yaml:"meter"`
	WiFi    WiFiConfig    `yaml:"wifi"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Bringup BringupConfig `yaml:"bringup"`
}

// ---- LOG ----

type LogConfig struct {
	Level string `yaml:"level"`
}

// ---- SERIAL ----

// The one UART is shared between the operator console and the field bus.
// Only the device path is configurable; bus parameters are fixed by the meter.
type SerialConfig struct {
	Device      string `yaml:"device"`
	ConsoleBaud int    `yaml:"console_baud"`
}

// ---- METER ----

type MeterConfig struct {
	ModbusID       uint8 `yaml:"modbus_id"`
	PollIntervalMs int   `yaml:"poll_interval_ms"`
}

// ---- WIFI ----

type WiFiConfig struct {
	Interface string `yaml:"interface"`
	SSID      string `yaml:"ssid"`
	PSK       string `yaml:"psk"`
}

// ---- MQTT ----

type MQTTConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	AccessToken     string `yaml:"access_token"`
	TelemetryTopic  string `yaml:"telemetry_topic"`
	AttributesTopic string `yaml:"attributes_topic"`
	KeepaliveS      int    `yaml:"keepalive_s"`
}

// ---- BRINGUP ----

type BringupConfig struct {
	LinkAttempts       int `yaml:"link_attempts"`
	LinkTimeoutS       int `yaml:"link_timeout_s"`
	LinkRetryDelayS    int `yaml:"link_retry_delay_s"`
	SessionAttempts    int `yaml:"session_attempts"`
	SessionTimeoutS    int `yaml:"session_timeout_s"`
	SessionRetryDelayS int `yaml:"session_retry_delay_s"`
	HealthCheckStride  int `yaml:"health_check_stride"`
}

// Load reads and decodes a YAML config file.
// It performs no validation and no defaulting.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &cfg, nil
}
