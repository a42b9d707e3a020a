package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Refill(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2)

	assert.True(t, rl.AllowN(now, 1))
	assert.True(t, rl.AllowN(now, 1))
	assert.False(t, rl.AllowN(now, 1))

	now = now.Add(31 * time.Second)
	assert.True(t, rl.AllowN(now, 1), "one token refills every thirty seconds")

	now = now.Add(time.Hour)
	for range 2 {
		require.True(t, rl.AllowN(now, 1))
	}
	assert.False(t, rl.AllowN(now, 1), "refill is capped at the burst")
}

func TestRateLimiter_WaitCanceled(t *testing.T) {
	rl := newRateLimiter(1)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Error(t, rl.Wait(ctx))
}

func TestRateLimiter_Default(t *testing.T) {
	rl := newRateLimiter(0)
	assert.Equal(t, defaultRateLimit, rl.Burst())
	assert.InDelta(t, 1.0, float64(rl.Limit()), 1e-9)
}
