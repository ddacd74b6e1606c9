// internal/signal/signal.go
package signal

import "time"

// Cell is a single-slot signal for collaborator-callback to supervisor
// handoffs. One producer raises, one consumer waits. The consumer MUST
// Reset before each attempt so a stale wakeup from a previous attempt
// cannot satisfy a new wait.
type Cell struct {
	ch chan bool
}

// New returns an empty cell.
func New() *Cell {
	return &Cell{ch: make(chan bool, 1)}
}

// Raise delivers v without blocking. If a value is already pending the
// first one wins until the next Reset.
func (c *Cell) Raise(v bool) {
	select {
	case c.ch <- v:
	default:
	}
}

// Reset discards any pending signal.
func (c *Cell) Reset() {
	select {
	case <-c.ch:
	default:
	}
}

// Wait blocks until a signal arrives or d elapses.
// ok=false means timeout.
func (c *Cell) Wait(d time.Duration) (v, ok bool) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case v = <-c.ch:
		return v, true
	case <-t.C:
		return false, false
	}
}

// TryTake returns a pending signal without blocking.
func (c *Cell) TryTake() (v, ok bool) {
	select {
	case v = <-c.ch:
		return v, true
	default:
		return false, false
	}
}
