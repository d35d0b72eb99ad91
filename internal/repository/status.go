package repository

import (
	"context"
	"errors"
	"time"

	"bullpen/internal/models"
	"bullpen/internal/moderation"
	"bullpen/internal/observability"

	"gorm.io/gorm"
)

// StatusRepository defines persistence operations for the per-user trust
// ledger rows. Updates are guarded by an optimistic version check.
type StatusRepository interface {
	Find(ctx context.Context, userID uint) (*models.UserModerationStatus, error)
	Create(ctx context.Context, status *models.UserModerationStatus) error
	UpdateVersioned(ctx context.Context, status *models.UserModerationStatus) error
	NormalizeExpired(ctx context.Context, now time.Time) (int64, error)
}

type statusRepository struct {
	db *gorm.DB
}

// NewStatusRepository returns a gorm-backed StatusRepository.
func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &statusRepository{db: db}
}

// Find returns (nil, nil) when the user has no status row yet.
func (r *statusRepository) Find(ctx context.Context, userID uint) (*models.UserModerationStatus, error) {
	defer observability.TrackQuery("read", "user_moderation_statuses")()

	var status models.UserModerationStatus
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *statusRepository) Create(ctx context.Context, status *models.UserModerationStatus) error {
	defer observability.TrackQuery("create", "user_moderation_statuses")()
	return r.db.WithContext(ctx).Create(status).Error
}

// UpdateVersioned writes the row only when its stored version still matches
// the version the caller read. A zero-row update means another writer got
// there first and surfaces as moderation.ErrVersionConflict so the trust
// ledger can re-read and retry.
func (r *statusRepository) UpdateVersioned(ctx context.Context, status *models.UserModerationStatus) error {
	defer observability.TrackQuery("update", "user_moderation_statuses")()

	res := r.db.WithContext(ctx).
		Model(&models.UserModerationStatus{}).
		Where("user_id = ? AND version = ?", status.UserID, status.Version).
		Updates(map[string]interface{}{
			"trust_score":     status.TrustScore,
			"strikes":         status.Strikes,
			"is_muted":        status.IsMuted,
			"muted_until":     status.MutedUntil,
			"is_banned":       status.IsBanned,
			"banned_until":    status.BannedUntil,
			"last_violation":  status.LastViolation,
			"violation_count": status.ViolationCount,
			"version":         status.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return moderation.ErrVersionConflict
	}
	status.Version++
	return nil
}

// NormalizeExpired clears mute and ban flags whose expiry has passed. It
// bumps the version so in-flight optimistic writers retry against the
// normalized row.
func (r *statusRepository) NormalizeExpired(ctx context.Context, now time.Time) (int64, error) {
	defer observability.TrackQuery("update", "user_moderation_statuses")()

	unmute := r.db.WithContext(ctx).
		Model(&models.UserModerationStatus{}).
		Where("is_muted = ? AND muted_until IS NOT NULL AND muted_until <= ?", true, now).
		Updates(map[string]interface{}{
			"is_muted":    false,
			"muted_until": nil,
			"version":     gorm.Expr("version + 1"),
		})
	if unmute.Error != nil {
		return 0, unmute.Error
	}

	unban := r.db.WithContext(ctx).
		Model(&models.UserModerationStatus{}).
		Where("is_banned = ? AND banned_until IS NOT NULL AND banned_until <= ?", true, now).
		Updates(map[string]interface{}{
			"is_banned":    false,
			"banned_until": nil,
			"version":      gorm.Expr("version + 1"),
		})
	if unban.Error != nil {
		return unmute.RowsAffected, unban.Error
	}

	return unmute.RowsAffected + unban.RowsAffected, nil
}
