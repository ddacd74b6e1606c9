// internal/config/normalize.go
package config

// Defaults mirror the field deployment this gateway was built for.
const (
	DefaultConsoleBaud       = 115200
	DefaultModbusID          = 1
	DefaultPollIntervalMs    = 30000
	DefaultMQTTPort          = 1883
	DefaultTelemetryTopic    = "v1/devices/me/telemetry"
	DefaultAttributesTopic   = "v1/devices/me/attributes"
	DefaultKeepaliveS        = 60
	DefaultLinkAttempts      = 10
	DefaultLinkTimeoutS      = 30
	DefaultLinkRetryDelayS   = 5
	DefaultSessionAttempts   = 5
	DefaultSessionTimeoutS   = 5
	DefaultSessionRetryDelay = 2
	DefaultHealthStride      = 10
)

// Normalize applies post-validation defaulting.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	fg := &cfg.Flowgard

	if fg.Serial.ConsoleBaud == 0 {
		fg.Serial.ConsoleBaud = DefaultConsoleBaud
	}

	if fg.Meter.ModbusID == 0 {
		fg.Meter.ModbusID = DefaultModbusID
	}
	if fg.Meter.PollIntervalMs == 0 {
		fg.Meter.PollIntervalMs = DefaultPollIntervalMs
	}

	if fg.MQTT.Port == 0 {
		fg.MQTT.Port = DefaultMQTTPort
	}
	if fg.MQTT.TelemetryTopic == "" {
		fg.MQTT.TelemetryTopic = DefaultTelemetryTopic
	}
	if fg.MQTT.AttributesTopic == "" {
		fg.MQTT.AttributesTopic = DefaultAttributesTopic
	}
	if fg.MQTT.KeepaliveS == 0 {
		fg.MQTT.KeepaliveS = DefaultKeepaliveS
	}

	b := &fg.Bringup
	if b.LinkAttempts == 0 {
		b.LinkAttempts = DefaultLinkAttempts
	}
	if b.LinkTimeoutS == 0 {
		b.LinkTimeoutS = DefaultLinkTimeoutS
	}
	if b.LinkRetryDelayS == 0 {
		b.LinkRetryDelayS = DefaultLinkRetryDelayS
	}
	if b.SessionAttempts == 0 {
		b.SessionAttempts = DefaultSessionAttempts
	}
	if b.SessionTimeoutS == 0 {
		b.SessionTimeoutS = DefaultSessionTimeoutS
	}
	if b.SessionRetryDelayS == 0 {
		b.SessionRetryDelayS = DefaultSessionRetryDelay
	}
	if b.HealthCheckStride == 0 {
		b.HealthCheckStride = DefaultHealthStride
	}

	if fg.Log.Level == "" {
		fg.Log.Level = "info"
	}
}
