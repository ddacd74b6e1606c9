// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
//
// Optional fields left at their zero value are accepted here and
// filled in by Normalize().
func Validate(cfg *Config) error {
	fg := &cfg.Flowgard

	// ------------------------------------------------------------
	// SERIAL / METER
	// ------------------------------------------------------------

	if fg.Serial.Device == "" {
		return fmt.Errorf("config: serial.device is required")
	}

	if fg.Meter.ModbusID > 247 {
		return fmt.Errorf("config: meter.modbus_id must be 1..247, got %d", fg.Meter.ModbusID)
	}

	if fg.Meter.PollIntervalMs < 0 {
		return fmt.Errorf("config: meter.poll_interval_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// WIFI
	// ------------------------------------------------------------

	if fg.WiFi.SSID == "" {
		return fmt.Errorf("config: wifi.ssid is required")
	}

	// ------------------------------------------------------------
	// MQTT
	// ------------------------------------------------------------

	if fg.MQTT.Host == "" {
		return fmt.Errorf("config: mqtt.host is required")
	}
	if fg.MQTT.Port < 0 || fg.MQTT.Port > 65535 {
		return fmt.Errorf("config: mqtt.port out of range: %d", fg.MQTT.Port)
	}
	if fg.MQTT.AccessToken == "" {
		return fmt.Errorf("config: mqtt.access_token is required")
	}

	// ------------------------------------------------------------
	// BRINGUP BOUNDS
	// ------------------------------------------------------------

	if n := fg.Bringup.LinkAttempts; n != 0 && (n < 3 || n > 10) {
		return fmt.Errorf("config: bringup.link_attempts must be 3..10, got %d", n)
	}
	if n := fg.Bringup.SessionAttempts; n < 0 {
		return fmt.Errorf("config: bringup.session_attempts must be >= 0")
	}
	if n := fg.Bringup.HealthCheckStride; n < 0 {
		return fmt.Errorf("config: bringup.health_check_stride must be >= 0")
	}
	if n := fg.Bringup.LinkTimeoutS; n < 0 {
		return fmt.Errorf("config: bringup.link_timeout_s must be >= 0")
	}
	if n := fg.Bringup.SessionTimeoutS; n < 0 {
		return fmt.Errorf("config: bringup.session_timeout_s must be >= 0")
	}

	return nil
}
