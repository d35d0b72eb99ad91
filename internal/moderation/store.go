package moderation

import (
	"context"
	"errors"
	"time"

	"bullpen/internal/models"
)

// ErrVersionConflict is returned by StatusStore.UpdateVersioned when another
// writer advanced the row version first. The trust ledger retries on it.
var ErrVersionConflict = errors.New("moderation: status row version conflict")

// CounterStore is the shared counter/cache store the rate limiter and
// duplicate suppressor run against. Implementations must make Increment and
// SetNX single atomic round-trips. ExpireNX sets a TTL only when the key has
// none, so a lost TTL write is repaired by any later call on the same key.
type CounterStore interface {
	Increment(ctx context.Context, key string) (int64, error)
	ExpireNX(ctx context.Context, key string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
}

// ActionStore persists moderation action records.
type ActionStore interface {
	Create(ctx context.Context, action *models.ModerationAction) error
	ListForUser(ctx context.Context, userID uint, limit int) ([]models.ModerationAction, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// StatusStore persists per-user trust ledger rows. Find returns (nil, nil)
// when no row exists for the user.
type StatusStore interface {
	Find(ctx context.Context, userID uint) (*models.UserModerationStatus, error)
	Create(ctx context.Context, status *models.UserModerationStatus) error
	UpdateVersioned(ctx context.Context, status *models.UserModerationStatus) error
	NormalizeExpired(ctx context.Context, now time.Time) (int64, error)
}

// MessageStore exposes the message history reads the repeat-message detector
// needs.
type MessageStore interface {
	FindRecent(ctx context.Context, userID uint, since time.Time, limit int) ([]models.Message, error)
}
