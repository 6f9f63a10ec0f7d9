package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterAllowAndReset(t *testing.T) {
	lim := NewMemory(2, time.Second)
	now := time.Now()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, retry, err := lim.Allow(ctx, "ip", now)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Zero(t, retry)
	}

	allowed, retry, err := lim.Allow(ctx, "ip", now.Add(200*time.Millisecond))
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 800*time.Millisecond, retry)

	allowed, _, err = lim.Allow(ctx, "other", now)
	require.NoError(t, err)
	assert.True(t, allowed, "keys are independent")

	allowed, _, err = lim.Allow(ctx, "ip", now.Add(2*time.Second))
	require.NoError(t, err)
	assert.True(t, allowed, "window reset")
}

func TestMemoryLimiterCleanup(t *testing.T) {
	lim := NewMemory(1, time.Second)
	now := time.Now()
	ctx := context.Background()

	_, _, _ = lim.Allow(ctx, "1.1.1.1", now)
	assert.Len(t, lim.entries, 1)

	_, _, _ = lim.Allow(ctx, "2.2.2.2", now.Add(2*time.Second))
	assert.Len(t, lim.entries, 1, "expired entries are swept")
}

func TestUnlimited(t *testing.T) {
	allowed, _, err := Unlimited{}.Allow(context.Background(), "k", time.Now())
	require.NoError(t, err)
	assert.True(t, allowed)
}
