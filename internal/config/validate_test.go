// internal/config/validate_test.go
package config

import "testing"

// helper to build a minimally valid config
func valid() *Config {
	return &Config{
		Flowgard: FlowgardConfig{
			Serial: SerialConfig{Device: "/dev/ttyUSB0"},
			WiFi:   WiFiConfig{SSID: "field-gw", PSK: "secret"},
			MQTT:   MQTTConfig{Host: "thingsboard.cloud", AccessToken: "token"},
		},
	}
}

// ---- tests ----

func TestValidate_MinimalConfig(t *testing.T) {
	if err := Validate(valid()); err != nil {
		t.Fatalf("Validate err=%v", err)
	}
}

func TestValidate_MissingSerialDevice(t *testing.T) {
	cfg := valid()
	cfg.Flowgard.Serial.Device = ""
	if err := Validate(cfg); err == nil {
		t.Fatalf("missing serial device accepted")
	}
}

func TestValidate_MissingSSID(t *testing.T) {
	cfg := valid()
	cfg.Flowgard.WiFi.SSID = ""
	if err := Validate(cfg); err == nil {
		t.Fatalf("missing ssid accepted")
	}
}

func TestValidate_MissingToken(t *testing.T) {
	cfg := valid()
	cfg.Flowgard.MQTT.AccessToken = ""
	if err := Validate(cfg); err == nil {
		t.Fatalf("missing access token accepted")
	}
}

func TestValidate_ModbusIDRange(t *testing.T) {
	cfg := valid()
	cfg.Flowgard.Meter.ModbusID = 248
	if err := Validate(cfg); err == nil {
		t.Fatalf("modbus id 248 accepted")
	}

	cfg.Flowgard.Meter.ModbusID = 247
	if err := Validate(cfg); err != nil {
		t.Fatalf("modbus id 247 rejected: %v", err)
	}
}

func TestValidate_LinkAttemptBounds(t *testing.T) {
	cfg := valid()

	cfg.Flowgard.Bringup.LinkAttempts = 2
	if err := Validate(cfg); err == nil {
		t.Fatalf("link_attempts 2 accepted")
	}

	cfg.Flowgard.Bringup.LinkAttempts = 11
	if err := Validate(cfg); err == nil {
		t.Fatalf("link_attempts 11 accepted")
	}

	for _, n := range []int{0, 3, 10} {
		cfg.Flowgard.Bringup.LinkAttempts = n
		if err := Validate(cfg); err != nil {
			t.Fatalf("link_attempts %d rejected: %v", n, err)
		}
	}
}

func TestNormalize_FillsDefaults(t *testing.T) {
	cfg := valid()
	Normalize(cfg)

	fg := cfg.Flowgard
	if fg.Serial.ConsoleBaud != DefaultConsoleBaud {
		t.Errorf("console baud %d", fg.Serial.ConsoleBaud)
	}
	if fg.Meter.ModbusID != DefaultModbusID {
		t.Errorf("modbus id %d", fg.Meter.ModbusID)
	}
	if fg.Meter.PollIntervalMs != DefaultPollIntervalMs {
		t.Errorf("poll interval %d", fg.Meter.PollIntervalMs)
	}
	if fg.MQTT.Port != DefaultMQTTPort {
		t.Errorf("mqtt port %d", fg.MQTT.Port)
	}
	if fg.MQTT.TelemetryTopic != DefaultTelemetryTopic {
		t.Errorf("telemetry topic %q", fg.MQTT.TelemetryTopic)
	}
	if fg.Bringup.LinkAttempts != DefaultLinkAttempts {
		t.Errorf("link attempts %d", fg.Bringup.LinkAttempts)
	}
	if fg.Bringup.HealthCheckStride != DefaultHealthStride {
		t.Errorf("health stride %d", fg.Bringup.HealthCheckStride)
	}
	if fg.Log.Level != "info" {
		t.Errorf("log level %q", fg.Log.Level)
	}
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	cfg := valid()
	cfg.Flowgard.Meter.PollIntervalMs = 5000
	cfg.Flowgard.Bringup.LinkAttempts = 3

	Normalize(cfg)

	if cfg.Flowgard.Meter.PollIntervalMs != 5000 {
		t.Errorf("explicit poll interval overwritten")
	}
	if cfg.Flowgard.Bringup.LinkAttempts != 3 {
		t.Errorf("explicit link attempts overwritten")
	}
}
