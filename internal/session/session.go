// internal/session/session.go
package session

import (
	"context"
	"errors"
)

// ErrNotConnected is returned by Publish when no session is up.
var ErrNotConnected = errors.New("session: not connected")

// Events receives asynchronous session notifications. Like the link
// events, these run on transport-owned goroutines.
type Events interface {
	// SessionUp reports the broker's connect acknowledgment. The
	// session counts as established only on ok=true; a sent connect
	// request alone proves nothing.
	SessionUp(ok bool)
	// SessionDown fires when an established session drops.
	SessionDown()
}

// Session is the pub/sub transport contract. Connect issues the
// handshake; the caller then drives InputReady/ProcessInput slices
// until the SessionUp event lands or its own deadline expires.
type Session interface {
	// Subscribe registers the single events sink. Call before Connect.
	Subscribe(ev Events)

	// Connect starts one session handshake over the established link.
	Connect(ctx context.Context) error

	// InputReady reports whether transport input is pending.
	InputReady() bool

	// ProcessInput feeds pending transport bytes to the protocol
	// handler. Acknowledgments surface through Events.
	ProcessInput()

	// KeepaliveTick lets the protocol emit its keepalive traffic.
	KeepaliveTick()

	// Publish delivers payload at-least-once and returns once the
	// delivery is acknowledged or refused.
	Publish(topic string, payload []byte) error

	// Disconnect tears the session down. Safe on a half-open session.
	Disconnect()
}
