// internal/poll/loop.go
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AMRAli-AG/Flow-Gard/internal/meter"
)

// Reader acquires one meter reading.
type Reader interface {
	Acquire() (*meter.Reading, error)
}

// Connectivity is the supervisor surface the loop drives.
type Connectivity interface {
	EnsureConnected(ctx context.Context) error
	Ready() bool
}

// Emitter publishes telemetry and attributes.
type Emitter interface {
	PublishReading(r *meter.Reading) error
	PublishAttributes(r *meter.Reading) error
}

// Maintainer is the per-cycle session upkeep surface.
type Maintainer interface {
	InputReady() bool
	ProcessInput()
	KeepaliveTick()
}

// Config is the minimal runtime config the loop needs.
type Config struct {
	Interval time.Duration
	// Every HealthStride-th cycle re-runs bring-up if not ready.
	HealthStride int
}

// Loop is the composition root: clock-driven, one cycle at a time, no
// overlap. All cycle-level consequences (skip publish, retry bring-up)
// are decided here and nowhere else.
type Loop struct {
	cfg   Config
	src   Reader
	sup   Connectivity
	pub   Emitter
	maint Maintainer
}

// New creates a loop with immutable config.
func New(cfg Config, src Reader, sup Connectivity, pub Emitter, maint Maintainer) (*Loop, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("poll: interval must be > 0")
	}
	if cfg.HealthStride <= 0 {
		return nil, errors.New("poll: health stride must be > 0")
	}
	return &Loop{cfg: cfg, src: src, sup: sup, pub: pub, maint: maint}, nil
}

// Run executes cycles on the fixed period until ctx is done. The first
// cycle runs immediately.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	for cycle := 1; ; cycle++ {
		l.Cycle(ctx, cycle)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Cycle performs exactly one acquire/connect/publish pass.
func (l *Loop) Cycle(ctx context.Context, n int) {
	if n%l.cfg.HealthStride == 0 && !l.sup.Ready() {
		log.Warn().Int("cycle", n).Msg("collector session down, re-running bring-up")
		if err := l.sup.EnsureConnected(ctx); err != nil {
			log.Warn().Err(err).Msg("bring-up failed, staying in acquisition-only mode")
		}
	}

	reading, err := l.src.Acquire()
	if err != nil {
		log.Warn().Int("cycle", n).Err(err).Msg("no reading this cycle")
	} else {
		logReading(n, reading)
	}

	if reading != nil && l.sup.Ready() {
		if err := l.pub.PublishAttributes(reading); err != nil {
			log.Warn().Err(err).Msg("attribute publish failed")
		}
		if err := l.pub.PublishReading(reading); err != nil {
			log.Warn().Err(err).Msg("telemetry publish failed, will retry next cycle")
		}
	} else if reading != nil {
		log.Info().Msg("collector offline, reading logged locally only")
	}

	if l.sup.Ready() {
		if l.maint.InputReady() {
			l.maint.ProcessInput()
		}
		l.maint.KeepaliveTick()
	}
}

// logReading is the one-line human-readable transaction summary.
func logReading(n int, r *meter.Reading) {
	log.Info().
		Int("cycle", n).
		Str("flow", scaled2(r.FlowRate)+" L/h").
		Str("forward", scaled3(r.ForwardTotal)+" m3").
		Str("reverse", scaled3(r.ReverseTotal)+" m3").
		Str("pressure", scaled3(uint32(r.Pressure))+" MPa").
		Str("temperature", scaled2(uint32(r.Temperature))+" C").
		Str("status", fmt.Sprintf("0x%04X %s", r.Status, r.StatusLabel())).
		Msg("meter read ok")
}

func scaled2(raw uint32) string {
	w, f := meter.SplitScaled(raw, 100)
	return fmt.Sprintf("%d.%02d", w, f)
}

func scaled3(raw uint32) string {
	w, f := meter.SplitScaled(raw, 1000)
	return fmt.Sprintf("%d.%03d", w, f)
}
