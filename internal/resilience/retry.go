// Package resilience provides bounded retry for operations against
// external collaborators (the container runtime and the service's
// health endpoint). Retries are always bounded; exhausting the budget
// returns the last error to the caller, who must re-invoke manually.
package resilience

import (
	"context"
	"errors"
	"time"
)

// Policy defines the retry behavior for an operation.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Interval is the delay between attempts.
	Interval time.Duration

	// Backoff doubles the delay after each failed attempt, capped at
	// MaxDelay. When false the interval is fixed (polling mode).
	Backoff bool

	// MaxDelay caps the delay when Backoff is enabled.
	MaxDelay time.Duration
}

// Retry executes fn until it succeeds, the attempt budget is spent, or
// the context is canceled. It returns nil on the first success and the
// last error otherwise. Context errors are returned immediately and
// never retried.
func Retry(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		lastErr = err

		if attempt < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delayFor(policy, attempt)):
			}
		}
	}
	return lastErr
}

// delayFor computes the wait after the given zero-based attempt.
func delayFor(policy Policy, attempt int) time.Duration {
	delay := policy.Interval
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	if !policy.Backoff {
		return delay
	}

	maxDelay := policy.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}
	return delay
}
