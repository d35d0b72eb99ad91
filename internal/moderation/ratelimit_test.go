package moderation

import (
	"context"
	"testing"
	"time"

	"bullpen/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisEngine(t *testing.T) (*Engine, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	e := NewEngine(cache.NewStore(client), noopActions(), &memoryStatuses{}, noopMessages())
	return e, mr
}

func TestCheckRateLimit_FixedWindow(t *testing.T) {
	e, _ := newRedisEngine(t)
	cfg := DefaultConfig()
	cfg.RateLimit.MessagesPerWindow = 10
	cfg.RateLimit.WindowSeconds = 15
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		rl, err := e.CheckRateLimit(ctx, 42, cfg)
		require.NoError(t, err)
		assert.True(t, rl.Allowed, "message %d should be admitted", i)
		assert.Equal(t, 10-i, rl.Remaining)
	}

	rl, err := e.CheckRateLimit(ctx, 42, cfg)
	require.NoError(t, err)
	assert.False(t, rl.Allowed, "11th message in the window must be rejected")
	assert.Zero(t, rl.Remaining)
}

func TestCheckRateLimit_PerUserCounters(t *testing.T) {
	e, _ := newRedisEngine(t)
	cfg := DefaultConfig()
	cfg.RateLimit.MessagesPerWindow = 1
	ctx := context.Background()

	rl, err := e.CheckRateLimit(ctx, 1, cfg)
	require.NoError(t, err)
	assert.True(t, rl.Allowed)

	rl, err = e.CheckRateLimit(ctx, 1, cfg)
	require.NoError(t, err)
	assert.False(t, rl.Allowed)

	// A different user has an untouched window.
	rl, err = e.CheckRateLimit(ctx, 2, cfg)
	require.NoError(t, err)
	assert.True(t, rl.Allowed)
}

func TestCheckRateLimit_WindowReset(t *testing.T) {
	e, mr := newRedisEngine(t)
	cfg := DefaultConfig()
	cfg.RateLimit.MessagesPerWindow = 2
	cfg.RateLimit.WindowSeconds = 15
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := e.CheckRateLimit(ctx, 7, cfg)
		require.NoError(t, err)
	}
	rl, err := e.CheckRateLimit(ctx, 7, cfg)
	require.NoError(t, err)
	require.False(t, rl.Allowed)

	mr.FastForward(16 * time.Second)

	rl, err = e.CheckRateLimit(ctx, 7, cfg)
	require.NoError(t, err)
	assert.True(t, rl.Allowed, "a fresh window starts after the TTL lapses")
	assert.Equal(t, 1, rl.Remaining)
}

func TestCheckRateLimit_WindowDoesNotSlide(t *testing.T) {
	e, mr := newRedisEngine(t)
	cfg := DefaultConfig()
	cfg.RateLimit.WindowSeconds = 15
	ctx := context.Background()

	_, err := e.CheckRateLimit(ctx, 9, cfg)
	require.NoError(t, err)

	mr.FastForward(10 * time.Second)
	_, err = e.CheckRateLimit(ctx, 9, cfg)
	require.NoError(t, err)

	// The second message must not push the window end out.
	assert.LessOrEqual(t, mr.TTL("chat:ratelimit:9"), 5*time.Second)
}

func TestCheckRateLimit_RepairsLostTTL(t *testing.T) {
	e, mr := newRedisEngine(t)
	cfg := DefaultConfig()
	cfg.RateLimit.MessagesPerWindow = 2
	cfg.RateLimit.WindowSeconds = 15
	ctx := context.Background()

	// A counter whose TTL write was lost would otherwise limit the user
	// forever once it passes the threshold.
	require.NoError(t, mr.Set("chat:ratelimit:5", "3"))
	require.Zero(t, mr.TTL("chat:ratelimit:5"))

	rl, err := e.CheckRateLimit(ctx, 5, cfg)
	require.NoError(t, err)
	assert.False(t, rl.Allowed)
	assert.Equal(t, 15*time.Second, mr.TTL("chat:ratelimit:5"), "the next check reinstates the window TTL")

	mr.FastForward(16 * time.Second)

	rl, err = e.CheckRateLimit(ctx, 5, cfg)
	require.NoError(t, err)
	assert.True(t, rl.Allowed)
}
