package resolver

import (
	"context"
	"time"
)

// RetryPolicy is the one retry schedule for role lookups: a linear backoff of
// attempt × Unit between attempts, capped at MaxAttempts, with the last
// attempt's result binding.
type RetryPolicy struct {
	MaxAttempts int
	Unit        time.Duration
}

// DefaultRetryPolicy waits 1s then 2s between its three attempts, which keeps
// the whole schedule well inside the gate's safety timeout.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Unit: time.Second}

// Backoff returns the wait after the given 1-based attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(attempt) * p.Unit
}

// SleepFunc waits for a duration unless the context ends first. Injectable so
// tests run the whole schedule without wall-clock delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn up to MaxAttempts times. fn returns true when its result is
// final; false asks for another attempt after the backoff. Cancelling ctx
// aborts the schedule between attempts.
func (p RetryPolicy) Do(ctx context.Context, sleep SleepFunc, fn func(attempt int) (done bool)) {
	if sleep == nil {
		sleep = sleepContext
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		if fn(attempt) {
			return
		}
		if attempt == attempts {
			return
		}
		if err := sleep(ctx, p.Backoff(attempt)); err != nil {
			return
		}
	}
}
