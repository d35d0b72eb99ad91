package moderation

import (
	"context"
	"fmt"
	"time"
)

const rateLimitKeyPrefix = "chat:ratelimit:%d"

// CheckRateLimit applies fixed-window rate limiting for the user's message
// stream: INCR the window counter, set the TTL when the window is fresh, and
// reject once the count exceeds the limit. Windows are discrete, not sliding;
// a burst straddling a boundary can admit up to twice the limit. That is the
// accepted cost of O(1) counter state.
func (e *Engine) CheckRateLimit(ctx context.Context, userID uint, cfg Config) (RateLimitResult, error) {
	key := fmt.Sprintf(rateLimitKeyPrefix, userID)
	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	limit := int64(cfg.RateLimit.MessagesPerWindow)

	count, err := e.counters.Increment(ctx, key)
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("rate limit increment: %w", err)
	}
	// ExpireNX runs on every increment, not only the first. If the TTL write
	// is lost after a successful INCR, the key would otherwise never expire
	// and the user would stay limited forever; the next message repairs it.
	if err := e.counters.ExpireNX(ctx, key, window); err != nil {
		return RateLimitResult{}, fmt.Errorf("rate limit expire: %w", err)
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitResult{
		Allowed:   count <= limit,
		Remaining: int(remaining),
		ResetAt:   e.now().Add(window),
	}, nil
}
