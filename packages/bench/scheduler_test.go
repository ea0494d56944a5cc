package bench

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerConcurrencyLimit(t *testing.T) {
	s := NewScheduler(&Config{Requests: 10, Concurrency: 2})
	ctx := context.Background()

	require.NoError(t, s.Acquire(ctx))
	require.NoError(t, s.Acquire(ctx))
	assert.Equal(t, 2, s.InFlight())

	timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Acquire(timeoutCtx), context.DeadlineExceeded)

	s.Release()
	assert.NoError(t, s.Acquire(ctx))
}

func TestSchedulerRateLimit(t *testing.T) {
	s := NewScheduler(&Config{Requests: 10, Concurrency: 1, Rate: 20})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Wait(ctx))
	}
	// burst of 1, then 50ms between tokens
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestSchedulerWaitUnlimited(t *testing.T) {
	s := NewScheduler(&Config{Requests: 1, Concurrency: 1})
	assert.NoError(t, s.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.Canceled)
}
