package repository

import (
	"context"
	"time"

	"bullpen/internal/models"
	"bullpen/internal/observability"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	FindRecent(ctx context.Context, userID uint, since time.Time, limit int) ([]models.Message, error)
	ListByRoom(ctx context.Context, roomID uint, limit int) ([]models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a gorm-backed MessageRepository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	defer observability.TrackQuery("create", "messages")()
	return r.db.WithContext(ctx).Create(message).Error
}

// FindRecent returns the user's newest messages created at or after the given
// time, newest first.
func (r *messageRepository) FindRecent(ctx context.Context, userID uint, since time.Time, limit int) ([]models.Message, error) {
	defer observability.TrackQuery("read", "messages")()

	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) ListByRoom(ctx context.Context, roomID uint, limit int) ([]models.Message, error) {
	defer observability.TrackQuery("read", "messages")()

	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
