package repository

import (
	"context"
	"testing"
	"time"

	"bullpen/internal/models"
	"bullpen/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionRepository_CreateAndList(t *testing.T) {
	repo := NewActionRepository(testutil.NewTestDB(t))
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.ModerationAction{
			AuditID:   uuid.NewString(),
			UserID:    9,
			Type:      models.ActionStrike,
			Reason:    "Medium severity violation",
			IsActive:  true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.ModerationAction{
		AuditID:  uuid.NewString(),
		UserID:   10,
		Type:     models.ActionWarning,
		Reason:   "other user",
		IsActive: true,
	}))

	actions, err := repo.ListForUser(ctx, 9, 10)
	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.True(t, actions[0].CreatedAt.After(actions[2].CreatedAt), "newest first")

	limited, err := repo.ListForUser(ctx, 9, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestActionRepository_DeactivateExpired(t *testing.T) {
	repo := NewActionRepository(testutil.NewTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	expired := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	require.NoError(t, repo.Create(ctx, &models.ModerationAction{
		AuditID: uuid.NewString(), UserID: 1, Type: models.ActionMute,
		ExpiresAt: &expired, IsActive: true,
	}))
	require.NoError(t, repo.Create(ctx, &models.ModerationAction{
		AuditID: uuid.NewString(), UserID: 2, Type: models.ActionMute,
		ExpiresAt: &future, IsActive: true,
	}))
	// Permanent actions have no expiry and stay active.
	require.NoError(t, repo.Create(ctx, &models.ModerationAction{
		AuditID: uuid.NewString(), UserID: 3, Type: models.ActionBan,
		IsActive: true,
	}))
	// Already inactive rows are not touched again.
	require.NoError(t, repo.Create(ctx, &models.ModerationAction{
		AuditID: uuid.NewString(), UserID: 4, Type: models.ActionMute,
		ExpiresAt: &expired, IsActive: false,
	}))

	n, err := repo.DeactivateExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	actions, err := repo.ListForUser(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.False(t, actions[0].IsActive)
	require.NotNil(t, actions[0].ExpiresAt, "expiry timestamp is preserved for audit")
	assert.WithinDuration(t, expired, *actions[0].ExpiresAt, time.Second)

	stillActive, err := repo.ListForUser(ctx, 3, 1)
	require.NoError(t, err)
	require.Len(t, stillActive, 1)
	assert.True(t, stillActive[0].IsActive)
}
