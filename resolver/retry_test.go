package resolver_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/immoflow/accessgate/resolver"
)

func TestBackoffIsLinear(t *testing.T) {
	p := resolver.RetryPolicy{MaxAttempts: 3, Unit: time.Second}

	require.Equal(t, 1*time.Second, p.Backoff(1))
	require.Equal(t, 2*time.Second, p.Backoff(2))
	require.Equal(t, 1*time.Second, p.Backoff(0), "attempt floor is 1")
}

func TestDoStopsWhenDone(t *testing.T) {
	p := resolver.RetryPolicy{MaxAttempts: 3, Unit: time.Second}
	noSleep := func(context.Context, time.Duration) error { return nil }

	calls := 0
	p.Do(context.Background(), noSleep, func(attempt int) bool {
		calls++
		return attempt == 2
	})
	require.Equal(t, 2, calls)
}

func TestDoCapsAttempts(t *testing.T) {
	p := resolver.RetryPolicy{MaxAttempts: 3, Unit: time.Second}

	var slept []time.Duration
	noSleep := func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	calls := 0
	p.Do(context.Background(), noSleep, func(int) bool {
		calls++
		return false
	})

	require.Equal(t, 3, calls)
	// No sleep after the final attempt.
	require.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, slept)
}

func TestDoAbortsOnCancelledContext(t *testing.T) {
	p := resolver.RetryPolicy{MaxAttempts: 3, Unit: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	sleep := func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	}

	calls := 0
	p.Do(ctx, sleep, func(int) bool {
		calls++
		cancel()
		return false
	})
	require.Equal(t, 1, calls, "cancellation between attempts must stop the schedule")
}

func TestZeroAttemptsStillRunsOnce(t *testing.T) {
	p := resolver.RetryPolicy{}
	calls := 0
	p.Do(context.Background(), nil, func(int) bool {
		calls++
		return true
	})
	require.Equal(t, 1, calls)
}
