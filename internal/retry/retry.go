// internal/retry/retry.go
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Bounded runs op up to attempts times with a fixed delay between
// attempts, stopping early on success or context cancellation. It is
// the one retry primitive shared by both bring-up layers; neither layer
// hand-rolls its own loop.
func Bounded(ctx context.Context, attempts int, delay time.Duration, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(attempts-1)),
		ctx,
	)

	return backoff.Retry(op, b)
}
