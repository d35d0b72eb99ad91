// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"time"

	"bullpen/internal/models"
	"bullpen/internal/observability"

	"gorm.io/gorm"
)

// ActionRepository defines persistence operations for moderation action
// records. Records are immutable audit rows; the only permitted mutation is
// deactivating expired ones.
type ActionRepository interface {
	Create(ctx context.Context, action *models.ModerationAction) error
	ListForUser(ctx context.Context, userID uint, limit int) ([]models.ModerationAction, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type actionRepository struct {
	db *gorm.DB
}

// NewActionRepository returns a gorm-backed ActionRepository.
func NewActionRepository(db *gorm.DB) ActionRepository {
	return &actionRepository{db: db}
}

func (r *actionRepository) Create(ctx context.Context, action *models.ModerationAction) error {
	defer observability.TrackQuery("create", "moderation_actions")()
	return r.db.WithContext(ctx).Create(action).Error
}

func (r *actionRepository) ListForUser(ctx context.Context, userID uint, limit int) ([]models.ModerationAction, error) {
	defer observability.TrackQuery("list", "moderation_actions")()

	var actions []models.ModerationAction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&actions).Error
	return actions, err
}

func (r *actionRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	defer observability.TrackQuery("update", "moderation_actions")()

	res := r.db.WithContext(ctx).
		Model(&models.ModerationAction{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
