// internal/telemetry/publisher.go
package telemetry

import (
	"errors"
	"fmt"

	"github.com/AMRAli-AG/Flow-Gard/internal/meter"
	"github.com/AMRAli-AG/Flow-Gard/internal/session"
)

var (
	// ErrNotConnected: the supervisor's gate said no. Skip, don't queue.
	ErrNotConnected = errors.New("telemetry: not connected")
	// ErrInvalidData: no valid reading this cycle.
	ErrInvalidData = errors.New("telemetry: no valid reading")
)

// Gate is the supervisor surface the publisher honors.
type Gate interface {
	// Ready is true iff the session layer is connected.
	Ready() bool
	// Epoch identifies the current session establishment.
	Epoch() uint64
}

// Publisher turns readings into collector messages. Delivery failures
// are reported, never retried here: the next poll cycle retries with
// fresher data anyway.
type Publisher struct {
	sess session.Session
	gate Gate

	telemetryTopic  string
	attributesTopic string

	// Epoch of the last successful attribute publish. Attributes go
	// out at most once per session establishment.
	attrEpoch uint64
}

// New builds a publisher over sess, gated by gate.
func New(sess session.Session, gate Gate, telemetryTopic, attributesTopic string) *Publisher {
	return &Publisher{
		sess:            sess,
		gate:            gate,
		telemetryTopic:  telemetryTopic,
		attributesTopic: attributesTopic,
	}
}

// PublishReading emits one telemetry message for r.
func (p *Publisher) PublishReading(r *meter.Reading) error {
	if !p.gate.Ready() {
		return ErrNotConnected
	}
	if r == nil {
		return ErrInvalidData
	}

	payload, err := EncodeTelemetry(r)
	if err != nil {
		return fmt.Errorf("telemetry: encode: %w", err)
	}

	if err := p.sess.Publish(p.telemetryTopic, payload); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}

// PublishAttributes emits the device identity once per session epoch.
// Calls within an already-covered epoch are no-ops.
func (p *Publisher) PublishAttributes(r *meter.Reading) error {
	if !p.gate.Ready() {
		return ErrNotConnected
	}
	if r == nil {
		return ErrInvalidData
	}

	epoch := p.gate.Epoch()
	if epoch == p.attrEpoch {
		return nil
	}

	payload, err := EncodeAttributes(r)
	if err != nil {
		return fmt.Errorf("telemetry: encode attributes: %w", err)
	}

	if err := p.sess.Publish(p.attributesTopic, payload); err != nil {
		return fmt.Errorf("telemetry: attributes: %w", err)
	}

	p.attrEpoch = epoch
	return nil
}
