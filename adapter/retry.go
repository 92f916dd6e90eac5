package adapter

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultRetryInterval is the wait before the first retry.
// Each later retry doubles it.
const DefaultRetryInterval = 500 * time.Millisecond

// Retry calls fn up to 1+retries times with exponential backoff between
// attempts. Errors wrapped with backoff.Permanent stop immediately and are
// returned unwrapped. A canceled ctx stops the loop with ctx.Err().
func Retry(ctx context.Context, retries int, interval time.Duration, fn func(ctx context.Context) error) error {
	if interval <= 0 {
		interval = DefaultRetryInterval
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = interval
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = 64 * interval
	exp.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(max(retries, 0))), ctx)

	return backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		return fn(ctx)
	}, b)
}
