package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"bullpen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupExpiredActions(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var actionsCutoff, statusesCutoff time.Time
	actions := noopActions()
	actions.deactivateExpiredFn = func(_ context.Context, cutoff time.Time) (int64, error) {
		actionsCutoff = cutoff
		return 4, nil
	}
	statuses := &statusStub{
		findFn:            func(context.Context, uint) (*models.UserModerationStatus, error) { return nil, nil },
		createFn:          func(context.Context, *models.UserModerationStatus) error { return nil },
		updateVersionedFn: func(context.Context, *models.UserModerationStatus) error { return nil },
		normalizeExpiredFn: func(_ context.Context, cutoff time.Time) (int64, error) {
			statusesCutoff = cutoff
			return 2, nil
		},
	}
	e := NewEngine(noopCounters(), actions, statuses, noopMessages(), fixedClock(now))

	purged, err := e.CleanupExpiredActions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), purged)
	assert.Equal(t, now, actionsCutoff)
	assert.Equal(t, now, statusesCutoff)
}

func TestCleanupExpiredActions_ActionStoreFailure(t *testing.T) {
	actions := noopActions()
	actions.deactivateExpiredFn = func(context.Context, time.Time) (int64, error) {
		return 0, errors.New("db down")
	}
	e := NewEngine(noopCounters(), actions, &memoryStatuses{}, noopMessages())

	_, err := e.CleanupExpiredActions(context.Background())
	require.Error(t, err)
}
