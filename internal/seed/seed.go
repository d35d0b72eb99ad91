// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development only.
package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"bullpen/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options control how much demo data gets created.
type Options struct {
	Users           int
	MessagesPerUser int
	Rooms           int
}

// DefaultOptions returns a small but useful demo dataset.
func DefaultOptions() Options {
	return Options{Users: 20, MessagesPerUser: 15, Rooms: 3}
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a fake user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: strings.ToLower(gofakeit.Username()),
		Email:    gofakeit.Email(),
	}
	for _, o := range overrides {
		o(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("seed user: %w", err)
	}
	return user, nil
}

// CreateMessage persists a fake chat message with a realistic created_at
// spread over the last day so rate and repeat detectors have history to read.
func (f *Factory) CreateMessage(user *models.User, roomID uint) (*models.Message, error) {
	msg := &models.Message{
		RoomID:    roomID,
		UserID:    user.ID,
		Content:   gofakeit.Sentence(f.rand.Intn(12) + 3),
		CreatedAt: time.Now().Add(-time.Duration(f.rand.Intn(24*60)) * time.Minute),
	}
	if err := f.db.Create(msg).Error; err != nil {
		return nil, fmt.Errorf("seed message: %w", err)
	}
	return msg, nil
}

// Run populates the database with demo users and chat traffic.
func Run(db *gorm.DB, opts Options) error {
	f := NewFactory(db)

	admin, err := f.CreateUser(func(u *models.User) {
		u.Username = "floor_admin"
		u.Email = "admin@bullpen.local"
		u.IsAdmin = true
	})
	if err != nil {
		return err
	}
	slog.Info("seeded admin user", "user_id", admin.ID)

	for i := 0; i < opts.Users; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return err
		}
		for j := 0; j < opts.MessagesPerUser; j++ {
			roomID := uint(f.rand.Intn(opts.Rooms) + 1)
			if _, err := f.CreateMessage(user, roomID); err != nil {
				return err
			}
		}
	}

	slog.Info("seed completed",
		"users", opts.Users+1,
		"messages", opts.Users*opts.MessagesPerUser,
	)
	return nil
}
