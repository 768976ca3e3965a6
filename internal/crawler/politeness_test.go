package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiter(t *testing.T) {
	t.Parallel()

	t.Run("zero rate disables throttling", func(t *testing.T) {
		t.Parallel()
		limiter := newHostLimiter(0)
		start := time.Now()
		for i := 0; i < 100; i++ {
			require.NoError(t, limiter.Wait(context.Background(), "example.com"))
		}
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("hosts are throttled independently", func(t *testing.T) {
		t.Parallel()
		limiter := newHostLimiter(1000)
		require.NoError(t, limiter.Wait(context.Background(), "a.test"))
		require.NoError(t, limiter.Wait(context.Background(), "b.test"))
	})

	t.Run("host keys are case insensitive", func(t *testing.T) {
		t.Parallel()
		limiter := newHostLimiter(1000)
		require.NoError(t, limiter.Wait(context.Background(), "Example.COM"))
		assert.Len(t, limiter.perHost, 1)
		require.NoError(t, limiter.Wait(context.Background(), "example.com"))
		assert.Len(t, limiter.perHost, 1)
	})

	t.Run("canceled context interrupts the wait", func(t *testing.T) {
		t.Parallel()
		limiter := newHostLimiter(0.001)
		require.NoError(t, limiter.Wait(context.Background(), "slow.test"))
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.Error(t, limiter.Wait(ctx, "slow.test"))
	})

	t.Run("nil limiter is a no-op", func(t *testing.T) {
		t.Parallel()
		var limiter *hostLimiter
		assert.NoError(t, limiter.Wait(context.Background(), "example.com"))
	})
}

func TestRandomDelay(t *testing.T) {
	t.Parallel()

	t.Run("sleeps within the window", func(t *testing.T) {
		t.Parallel()
		start := time.Now()
		RandomDelay(context.Background(), 10*time.Millisecond, 30*time.Millisecond)
		elapsed := time.Since(start)
		assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)
	})

	t.Run("zero window returns immediately", func(t *testing.T) {
		t.Parallel()
		start := time.Now()
		RandomDelay(context.Background(), 0, 0)
		assert.Less(t, time.Since(start), 10*time.Millisecond)
	})

	t.Run("canceled context cuts the sleep short", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		start := time.Now()
		RandomDelay(ctx, time.Second, 2*time.Second)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})
}

func TestTimerPauseController(t *testing.T) {
	t.Parallel()
	pauser := &timerPauseController{}

	start := time.Now()
	pauser.Pause(context.Background(), 15*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)

	start = time.Now()
	pauser.Pause(context.Background(), -time.Second)
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}
