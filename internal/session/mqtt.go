// internal/session/mqtt.go
package session

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	qosAtLeastOnce = 1

	// Ceiling on waiting for a PUBACK inside Publish.
	publishAckTimeout = 5 * time.Second
)

// Config is the broker endpoint and ThingsBoard-style token auth.
type Config struct {
	Host        string
	Port        int
	AccessToken string
	Keepalive   time.Duration
}

// MQTTSession implements Session over paho.mqtt.golang.
//
// Paho runs its own network and keepalive goroutines, so InputReady,
// ProcessInput and KeepaliveTick are satisfied internally; the poll
// slices in the supervisor degrade to plain waiting, which keeps the
// bring-up shape identical for transports that do need driving.
type MQTTSession struct {
	cfg Config
	ev  Events

	mu     sync.Mutex
	client mqtt.Client
}

// NewMQTT builds an unconnected session. Each Connect creates a fresh
// client so a torn-down attempt leaves nothing half-open behind.
func NewMQTT(cfg Config) *MQTTSession {
	return &MQTTSession{cfg: cfg}
}

func (s *MQTTSession) Subscribe(ev Events) { s.ev = ev }

// Connect issues one broker handshake. The CONNACK outcome arrives on
// the events sink; auto-reconnect stays off because the supervisor owns
// all retry policy.
func (s *MQTTSession) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", s.cfg.Host, s.cfg.Port)).
		SetClientID(clientID()).
		SetUsername(s.cfg.AccessToken).
		SetKeepAlive(s.cfg.Keepalive).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetOnConnectHandler(func(mqtt.Client) {
			s.ev.SessionUp(true)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn().Err(err).Msg("mqtt session lost")
			s.ev.SessionDown()
		})

	client := mqtt.NewClient(opts)

	s.mu.Lock()
	s.client = client
	s.mu.Unlock()

	token := client.Connect()
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.Warn().Err(err).Msg("mqtt connect refused")
			s.ev.SessionUp(false)
		}
	}()

	return nil
}

// InputReady always reports false: paho consumes transport input on its
// own reader goroutine.
func (s *MQTTSession) InputReady() bool { return false }

// ProcessInput is a no-op; see InputReady.
func (s *MQTTSession) ProcessInput() {}

// KeepaliveTick is a no-op; paho's pinger owns the keepalive schedule.
func (s *MQTTSession) KeepaliveTick() {}

// Publish sends payload at QoS 1 and waits for the acknowledgment.
func (s *MQTTSession) Publish(topic string, payload []byte) error {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()

	if client == nil || !client.IsConnected() {
		return ErrNotConnected
	}

	token := client.Publish(topic, qosAtLeastOnce, false, payload)
	if !token.WaitTimeout(publishAckTimeout) {
		return fmt.Errorf("session: publish to %s: ack timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("session: publish to %s: %w", topic, err)
	}
	return nil
}

// Disconnect drops the current client, half-open or not.
func (s *MQTTSession) Disconnect() {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.mu.Unlock()

	if client != nil {
		client.Disconnect(250)
	}
}

// clientID returns flowgard_XXXXXXXX with a random suffix so a crashed
// instance's broker session never collides with its replacement.
func clientID() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "flowgard_00000000"
	}
	return fmt.Sprintf("flowgard_%08x", binary.BigEndian.Uint32(b[:]))
}
