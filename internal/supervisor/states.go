// internal/supervisor/states.go
package supervisor

// LinkState is the wireless layer's state. It moves only on explicit
// driver signals or supervisor-initiated bring-up.
type LinkState int32

const (
	LinkDown LinkState = iota
	LinkConnecting
	LinkUp
)

func (s LinkState) String() string {
	switch s {
	case LinkDown:
		return "down"
	case LinkConnecting:
		return "connecting"
	case LinkUp:
		return "up"
	default:
		return "invalid"
	}
}

// SessionState is the pub/sub layer's state. It may only progress while
// the link is up, and reaches Connected only on an explicit broker
// acknowledgment, never optimistically on request-send.
type SessionState int32

const (
	SessionDisconnected SessionState = iota
	SessionConnecting
	SessionConnected
)

func (s SessionState) String() string {
	switch s {
	case SessionDisconnected:
		return "disconnected"
	case SessionConnecting:
		return "connecting"
	case SessionConnected:
		return "connected"
	default:
		return "invalid"
	}
}
