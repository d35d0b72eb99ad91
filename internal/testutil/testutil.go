// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"bullpen/internal/database"
	"bullpen/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an isolated in-memory SQLite database with the full schema
// applied. The named DSN keeps the database alive across pooled connections
// without sharing it between tests.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewTestRedis starts an in-process Redis and returns a connected client.
func NewTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// CreateUser persists a fake user and returns it.
func CreateUser(t *testing.T, db *gorm.DB, overrides ...func(*models.User)) *models.User {
	t.Helper()

	user := &models.User{
		Username: strings.ToLower(gofakeit.Username()),
		Email:    gofakeit.Email(),
	}
	for _, o := range overrides {
		o(user)
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateMessage persists a chat message for the given user.
func CreateMessage(t *testing.T, db *gorm.DB, userID uint, content string, createdAt time.Time) *models.Message {
	t.Helper()

	msg := &models.Message{
		RoomID:    1,
		UserID:    userID,
		Content:   content,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(msg).Error)
	return msg
}
