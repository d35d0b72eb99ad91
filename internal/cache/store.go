package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store adapts a Redis client to the narrow counter-store surface the
// moderation engine consumes: atomic increment, TTL management, and
// set-if-not-exists. It holds no state beyond the client, so one Store is
// shared across all users and engine instances.
type Store struct {
	client *redis.Client
}

// ErrUnavailable is returned by every Store operation when the Redis client
// was never connected. The moderation engine treats it like any other
// counter-store failure, so the configured fail policy applies.
var ErrUnavailable = errors.New("cache: redis unavailable")

// NewStore returns a counter store backed by the given Redis client. A nil
// client yields a store whose operations all fail with ErrUnavailable.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Increment atomically increments the counter at key and returns the new
// value. A fresh key starts at 1.
func (s *Store) Increment(ctx context.Context, key string) (int64, error) {
	if s.client == nil {
		return 0, ErrUnavailable
	}
	return s.client.Incr(ctx, key).Result()
}

// ExpireNX sets the TTL on key only when the key has no TTL yet. Repeated
// calls within a window are no-ops, so the window never slides, and a key
// whose TTL write was lost gets one on the next call.
func (s *Store) ExpireNX(ctx context.Context, key string, ttl time.Duration) error {
	if s.client == nil {
		return ErrUnavailable
	}
	return s.client.ExpireNX(ctx, key, ttl).Err()
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if s.client == nil {
		return false, ErrUnavailable
	}
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetNX sets key to value with the given TTL only if key is absent, in one
// atomic round-trip. It returns true when the key was set.
func (s *Store) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if s.client == nil {
		return false, ErrUnavailable
	}
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

// Get returns the value at key, or empty string without error when the key
// does not exist.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if s.client == nil {
		return "", ErrUnavailable
	}
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}
