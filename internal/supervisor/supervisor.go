// internal/supervisor/supervisor.go
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AMRAli-AG/Flow-Gard/internal/retry"
	"github.com/AMRAli-AG/Flow-Gard/internal/session"
	"github.com/AMRAli-AG/Flow-Gard/internal/signal"
	"github.com/AMRAli-AG/Flow-Gard/internal/wifi"
)

// Bring-up outcomes. Both are non-fatal to the host process: exhausted
// retries leave the gateway in acquisition-only mode until the next
// health check re-runs the protocol.
var (
	ErrLinkUnavailable    = errors.New("supervisor: link unavailable")
	ErrSessionUnavailable = errors.New("supervisor: session unavailable")
)

// Attempt-level failures, folded into the retry combinator.
var (
	errLinkTimeout    = errors.New("supervisor: timed out waiting for link result")
	errAddressTimeout = errors.New("supervisor: timed out waiting for address")
	errLinkRefused    = errors.New("supervisor: link attempt refused")
	errSessionTimeout = errors.New("supervisor: timed out waiting for session ack")
	errSessionRefused = errors.New("supervisor: session refused")
)

// Config bounds both bring-up layers.
type Config struct {
	LinkAttempts   int
	LinkTimeout    time.Duration
	LinkRetryDelay time.Duration

	SessionAttempts   int
	SessionTimeout    time.Duration
	SessionRetryDelay time.Duration
}

// Supervisor owns the (LinkState, SessionState) pair and the only
// writers to it. Collaborator callbacks land in single-slot signal
// cells, consumed by the bring-up sequence on the driver goroutine;
// state cells are atomics so the publisher's readiness query is safe
// from any goroutine.
//
// Re-entry is deliberately stateless: a health check that finds the
// session down re-runs the whole handshake instead of repairing partial
// progress. A few seconds of extra latency buys a far smaller state
// space and no half-initialized clients.
type Supervisor struct {
	cfg  Config
	link wifi.Driver
	sess session.Session

	linkState atomic.Int32
	sessState atomic.Int32
	epoch     atomic.Uint64

	linkResult   *signal.Cell
	addrAssigned *signal.Cell
	sessionAck   *signal.Cell

	// One poll slice of the session bring-up wait loop.
	ackSlice time.Duration
}

// New wires the supervisor as the single events sink of both
// collaborators.
func New(cfg Config, link wifi.Driver, sess session.Session) *Supervisor {
	s := &Supervisor{
		cfg:          cfg,
		link:         link,
		sess:         sess,
		linkResult:   signal.New(),
		addrAssigned: signal.New(),
		sessionAck:   signal.New(),
		ackSlice:     500 * time.Millisecond,
	}
	link.Subscribe(s)
	sess.Subscribe(s)
	return s
}

// ---- collaborator events (driver/transport goroutines) ----

func (s *Supervisor) LinkResult(ok bool) { s.linkResult.Raise(ok) }

func (s *Supervisor) AddressAssigned() { s.addrAssigned.Raise(true) }

// LinkLost demotes both layers; the session cannot outlive its link.
func (s *Supervisor) LinkLost() {
	s.linkState.Store(int32(LinkDown))
	s.sessState.Store(int32(SessionDisconnected))
	log.Warn().Msg("link lost, session demoted")
}

func (s *Supervisor) SessionUp(ok bool) { s.sessionAck.Raise(ok) }

// SessionDown drops the session layer only. Never fatal; the next
// health check brings it back.
func (s *Supervisor) SessionDown() {
	s.sessState.Store(int32(SessionDisconnected))
	log.Warn().Msg("session disconnected")
}

// ---- queries ----

// Ready is the single gate the publisher honors.
func (s *Supervisor) Ready() bool {
	return SessionState(s.sessState.Load()) == SessionConnected
}

// Link returns the current link-layer state.
func (s *Supervisor) Link() LinkState { return LinkState(s.linkState.Load()) }

// Session returns the current session-layer state.
func (s *Supervisor) Session() SessionState { return SessionState(s.sessState.Load()) }

// Epoch counts session establishments. It increments each time the
// session reaches Connected, so per-session work (attribute publishing)
// can key off it.
func (s *Supervisor) Epoch() uint64 { return s.epoch.Load() }

// ---- bring-up ----

// EnsureConnected runs the full two-layer bring-up unless already
// ready. Single caller: the poll loop's goroutine.
func (s *Supervisor) EnsureConnected(ctx context.Context) error {
	if s.Ready() {
		return nil
	}

	if err := s.bringUpLink(ctx); err != nil {
		return err
	}
	return s.bringUpSession(ctx)
}

// bringUpLink associates and waits for the two external signals: link
// result, then address assignment. Each has its own timeout; either
// expiring fails the attempt.
func (s *Supervisor) bringUpLink(ctx context.Context) error {
	s.linkState.Store(int32(LinkConnecting))
	s.sessState.Store(int32(SessionDisconnected))

	attempt := 0
	err := retry.Bounded(ctx, s.cfg.LinkAttempts, s.cfg.LinkRetryDelay, func() error {
		attempt++
		log.Info().Int("attempt", attempt).Int("max", s.cfg.LinkAttempts).Msg("link bring-up")

		// Discard stale wakeups from any previous attempt.
		s.linkResult.Reset()
		s.addrAssigned.Reset()

		if err := s.link.Connect(ctx); err != nil {
			return fmt.Errorf("link connect request: %w", err)
		}

		ok, got := s.linkResult.Wait(s.cfg.LinkTimeout)
		if !got {
			return errLinkTimeout
		}
		if !ok {
			return errLinkRefused
		}

		if _, got := s.addrAssigned.Wait(s.cfg.LinkTimeout); !got {
			return errAddressTimeout
		}
		return nil
	})
	if err != nil {
		s.linkState.Store(int32(LinkDown))
		log.Error().Err(err).Int("attempts", attempt).Msg("link bring-up exhausted, acquisition-only mode")
		return fmt.Errorf("%w: %v", ErrLinkUnavailable, err)
	}

	s.linkState.Store(int32(LinkUp))
	log.Info().Int("attempt", attempt).Msg("link up")
	return nil
}

// bringUpSession issues a connect and drives input slices until the
// acknowledgment signal lands or the attempt deadline passes. Any
// half-open session is torn down before the next attempt.
func (s *Supervisor) bringUpSession(ctx context.Context) error {
	if s.Link() != LinkUp {
		return fmt.Errorf("%w: link not up", ErrSessionUnavailable)
	}

	s.sessState.Store(int32(SessionConnecting))

	attempt := 0
	err := retry.Bounded(ctx, s.cfg.SessionAttempts, s.cfg.SessionRetryDelay, func() error {
		attempt++
		log.Info().Int("attempt", attempt).Int("max", s.cfg.SessionAttempts).Msg("session bring-up")

		s.sessionAck.Reset()

		if err := s.sess.Connect(ctx); err != nil {
			s.sess.Disconnect()
			return fmt.Errorf("session connect request: %w", err)
		}

		deadline := time.Now().Add(s.cfg.SessionTimeout)
		for time.Now().Before(deadline) {
			if s.sess.InputReady() {
				s.sess.ProcessInput()
			}

			slice := s.ackSlice
			if remain := time.Until(deadline); remain < slice {
				slice = remain
			}
			if ok, got := s.sessionAck.Wait(slice); got {
				if ok {
					return nil
				}
				s.sess.Disconnect()
				return errSessionRefused
			}
		}

		s.sess.Disconnect()
		return errSessionTimeout
	})
	if err != nil {
		s.sessState.Store(int32(SessionDisconnected))
		log.Error().Err(err).Int("attempts", attempt).Msg("session bring-up exhausted")
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}

	s.sessState.Store(int32(SessionConnected))
	s.epoch.Add(1)
	log.Info().Uint64("epoch", s.epoch.Load()).Msg("session connected")
	return nil
}
