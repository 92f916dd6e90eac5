package drain

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// BackoffPolicy selects how the wait after an empty receive evolves.
type BackoffPolicy string

const (
	// BackoffConstant waits Initial after every empty receive.
	BackoffConstant BackoffPolicy = "constant"
	// BackoffExponential grows the wait by Multiplier up to Max.
	BackoffExponential BackoffPolicy = "exponential"
)

// BackoffConfig configures the empty-receive wait. Any non-empty batch
// resets the sequence.
type BackoffConfig struct {
	// Policy is constant (default) or exponential.
	Policy BackoffPolicy
	// Initial is the first wait.
	Initial time.Duration
	// Max caps exponential growth. Zero means 10x Initial.
	Max time.Duration
	// Multiplier is the exponential growth factor. Zero means 2.
	Multiplier float64
}

// Validate checks the policy name and durations.
func (c BackoffConfig) Validate() error {
	switch c.Policy {
	case "", BackoffConstant, BackoffExponential:
	default:
		return fmt.Errorf("invalid backoff policy: %s (must be constant or exponential)", c.Policy)
	}
	if c.Initial <= 0 {
		return fmt.Errorf("backoff initial wait must be > 0, got %v", c.Initial)
	}
	if c.Max < 0 {
		return fmt.Errorf("backoff max must be >= 0, got %v", c.Max)
	}
	if c.Multiplier != 0 && c.Multiplier < 1 {
		return fmt.Errorf("backoff multiplier must be >= 1, got %v", c.Multiplier)
	}
	return nil
}

// build returns a fresh backoff sequence. Randomization is disabled so
// drains are reproducible.
func (c BackoffConfig) build() (backoff.BackOff, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.Policy {
	case BackoffExponential:
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = c.Initial
		b.RandomizationFactor = 0
		b.Multiplier = c.Multiplier
		if b.Multiplier == 0 {
			b.Multiplier = 2
		}
		b.MaxInterval = c.Max
		if b.MaxInterval == 0 {
			b.MaxInterval = 10 * c.Initial
		}
		b.MaxElapsedTime = 0
		b.Reset()
		return b, nil
	default:
		return backoff.NewConstantBackOff(c.Initial), nil
	}
}
