package generator

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig controls how often a failed model call is repeated.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig retries twice with waits starting at half a second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     5 * time.Second,
		Multiplier:  2,
	}
}

// withRetry runs call until it succeeds, returns a non-retryable error or
// the attempts are used up. The last error is returned.
func withRetry[T any](ctx context.Context, cfg RetryConfig, call func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := range attempts {
		res, err := call(ctx)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if !shouldRetry(err) || attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(cfg.backoff(attempt)):
		}
	}
	return zero, lastErr
}

// Cancellation by the caller is final. A per-attempt deadline is not, as
// long as the caller's context is still alive.
func shouldRetry(err error) bool {
	return !errors.Is(err, context.Canceled)
}

func (c RetryConfig) backoff(attempt int) time.Duration {
	mult := c.Multiplier
	if mult <= 0 {
		mult = 2
	}
	wait := float64(c.InitialWait) * math.Pow(mult, float64(attempt))
	if c.MaxWait > 0 && wait > float64(c.MaxWait) {
		wait = float64(c.MaxWait)
	}

	// Add ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
