// cmd/flowgard/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AMRAli-AG/Flow-Gard/internal/config"
	"github.com/AMRAli-AG/Flow-Gard/internal/meter"
	"github.com/AMRAli-AG/Flow-Gard/internal/poll"
	"github.com/AMRAli-AG/Flow-Gard/internal/serialbus"
	"github.com/AMRAli-AG/Flow-Gard/internal/session"
	"github.com/AMRAli-AG/Flow-Gard/internal/supervisor"
	"github.com/AMRAli-AG/Flow-Gard/internal/telemetry"
	"github.com/AMRAli-AG/Flow-Gard/internal/wifi"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "config/flowgard.yml", "path to config file")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config validation failed")
	}
	config.Normalize(cfg)

	fg := cfg.Flowgard

	if level, err := zerolog.ParseLevel(fg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().Str("device", fg.Serial.Device).Uint8("modbus_id", fg.Meter.ModbusID).Msg("flowgard starting")

	// --------------------
	// Field bus (fatal on failure: nothing works without the UART)
	// --------------------

	port, err := serialbus.Open(fg.Serial.Device, serialbus.Settings{
		BaudRate: fg.Serial.ConsoleBaud,
		Parity:   serialbus.ParityNone,
		StopBits: 1,
		DataBits: 8,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("serial transport init failed")
	}
	defer port.Close()

	source := meter.NewSource(port, fg.Meter.ModbusID)

	// --------------------
	// Connectivity stack
	// --------------------

	link := wifi.NewNMDriver(fg.WiFi.Interface, fg.WiFi.SSID, fg.WiFi.PSK)

	sess := session.NewMQTT(session.Config{
		Host:        fg.MQTT.Host,
		Port:        fg.MQTT.Port,
		AccessToken: fg.MQTT.AccessToken,
		Keepalive:   time.Duration(fg.MQTT.KeepaliveS) * time.Second,
	})

	sup := supervisor.New(supervisor.Config{
		LinkAttempts:      fg.Bringup.LinkAttempts,
		LinkTimeout:       time.Duration(fg.Bringup.LinkTimeoutS) * time.Second,
		LinkRetryDelay:    time.Duration(fg.Bringup.LinkRetryDelayS) * time.Second,
		SessionAttempts:   fg.Bringup.SessionAttempts,
		SessionTimeout:    time.Duration(fg.Bringup.SessionTimeoutS) * time.Second,
		SessionRetryDelay: time.Duration(fg.Bringup.SessionRetryDelayS) * time.Second,
	}, link, sess)

	pub := telemetry.New(sess, sup, fg.MQTT.TelemetryTopic, fg.MQTT.AttributesTopic)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial bring-up. Exhausted retries are not fatal: the gateway
	// keeps polling the meter and the health check keeps retrying.
	if err := sup.EnsureConnected(ctx); err != nil {
		log.Warn().Err(err).Msg("initial bring-up failed, continuing in acquisition-only mode")
	}

	loop, err := poll.New(poll.Config{
		Interval:     time.Duration(fg.Meter.PollIntervalMs) * time.Millisecond,
		HealthStride: fg.Bringup.HealthCheckStride,
	}, source, sup, pub, sess)
	if err != nil {
		log.Fatal().Err(err).Msg("poll loop build failed")
	}

	go loop.Run(ctx)

	// --------------------
	// Wait for shutdown signal
	// --------------------

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	cancel()
	sess.Disconnect()

	log.Info().Msg("flowgard stopped")
}
