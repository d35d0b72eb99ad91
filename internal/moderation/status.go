package moderation

import (
	"context"
	"fmt"
)

// GetUserModerationStatus computes the user's live moderation status. Flags
// persisted at write time are re-evaluated against the current clock: an
// expired mute or ban reads as inactive even before the cleanup sweeper has
// normalized the row. The read has no side effects; calling it twice without
// intervening writes returns identical results.
func (e *Engine) GetUserModerationStatus(ctx context.Context, userID uint, cfg Config) (StatusView, error) {
	status, err := e.statuses.Find(ctx, userID)
	if err != nil {
		return StatusView{}, fmt.Errorf("load status: %w", err)
	}

	if status == nil {
		// Never actioned: clean slate.
		return StatusView{
			UserID:     userID,
			CanChat:    true,
			TrustScore: cfg.Trust.InitialScore,
		}, nil
	}

	now := e.now()
	muted := status.IsMuted && (status.MutedUntil == nil || status.MutedUntil.After(now))
	banned := status.IsBanned && (status.BannedUntil == nil || status.BannedUntil.After(now))

	return StatusView{
		UserID:      userID,
		CanChat:     !muted && !banned,
		IsMuted:     muted,
		IsBanned:    banned,
		MutedUntil:  status.MutedUntil,
		BannedUntil: status.BannedUntil,
		TrustScore:  status.TrustScore,
		Strikes:     status.Strikes,
	}, nil
}
