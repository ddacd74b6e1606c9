// internal/wifi/driver.go
package wifi

import "context"

// Events is the sink for asynchronous link notifications. Callbacks run
// on driver-owned goroutines; the subscriber hands them off through
// single-slot signal cells, never bare shared flags.
type Events interface {
	// LinkResult reports the outcome of the last Connect attempt.
	LinkResult(ok bool)
	// AddressAssigned fires once the interface holds a usable address.
	AddressAssigned()
	// LinkLost fires when an established link drops.
	LinkLost()
}

// Driver brings up and monitors the wireless link.
type Driver interface {
	// Subscribe registers the single events sink. Call before Connect.
	Subscribe(ev Events)

	// Connect issues one association attempt. The outcome arrives via
	// the Events sink; an error here means the request itself could
	// not be issued.
	Connect(ctx context.Context) error
}
