package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bullpen/internal/models"
	"bullpen/internal/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// executeRetries bounds the optimistic-concurrency loop on the status row.
const executeRetries = 3

// ExecuteAction persists an enforcement action and applies its trust ledger
// transition. The action record is written first and is immutable; the status
// row is then updated under an optimistic version check and retried on
// conflict, so concurrent executions for one user never lose a penalty.
//
// The record write and the ledger update are separate statements, not one
// transaction; a crash between them leaves an action row without its ledger
// effect, which the caller learns about through the returned error.
func (e *Engine) ExecuteAction(ctx context.Context, userID uint, action Action, moderatorID *uint, cfg Config) error {
	ctx, span := e.tracer.Start(ctx, "moderation.ExecuteAction",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(userID)),
			attribute.String("moderation.action", string(action.Type)),
		))
	defer span.End()

	now := e.now().UTC()

	record := &models.ModerationAction{
		AuditID:         uuid.NewString(),
		UserID:          userID,
		Type:            action.Type,
		Reason:          action.Reason,
		DurationMinutes: action.DurationMinutes,
		ModeratorID:     moderatorID,
		ExpiresAt:       expiryFrom(now, action.DurationMinutes),
		IsActive:        true,
		CreatedAt:       now,
	}
	if err := e.actions.Create(ctx, record); err != nil {
		slog.ErrorContext(ctx, "failed to persist moderation action",
			"user_id", userID, "action", string(action.Type), "err", err)
		return fmt.Errorf("persist action: %w", err)
	}

	if err := e.applyTransition(ctx, userID, action, now, cfg); err != nil {
		slog.ErrorContext(ctx, "failed to update trust ledger",
			"user_id", userID, "action", string(action.Type), "err", err)
		return fmt.Errorf("trust ledger update: %w", err)
	}

	observability.ActionsExecuted.WithLabelValues(string(action.Type), automationLabel(moderatorID)).Inc()
	slog.InfoContext(ctx, "moderation action executed",
		"user_id", userID,
		"action", string(action.Type),
		"audit_id", record.AuditID,
		"automated", moderatorID == nil,
	)
	return nil
}

// applyTransition runs the read-modify-write on the status row, creating it
// lazily on first contact with initial trust score.
func (e *Engine) applyTransition(ctx context.Context, userID uint, action Action, now time.Time, cfg Config) error {
	var lastErr error
	for attempt := 0; attempt < executeRetries; attempt++ {
		status, err := e.statuses.Find(ctx, userID)
		if err != nil {
			return err
		}
		if status == nil {
			status = &models.UserModerationStatus{
				UserID:     userID,
				TrustScore: cfg.Trust.InitialScore,
			}
			if err := e.statuses.Create(ctx, status); err != nil {
				// A concurrent executor may have created the row first;
				// re-read and continue with the transition.
				if status, err = e.statuses.Find(ctx, userID); err != nil || status == nil {
					return fmt.Errorf("create status row: %w", err)
				}
			}
		}

		e.transition(status, action, now, cfg)

		switch err := e.statuses.UpdateVersioned(ctx, status); {
		case err == nil:
			return nil
		case errors.Is(err, ErrVersionConflict):
			lastErr = err
			continue
		default:
			return err
		}
	}
	return fmt.Errorf("status update exhausted %d attempts: %w", executeRetries, lastErr)
}

// transition applies one enforcement action to a status row in place. Trust
// scores only ever decrease here and are clamped to the configured bounds; a
// nil or non-positive duration on a ban or mute means permanent.
func (e *Engine) transition(status *models.UserModerationStatus, action Action, now time.Time, cfg Config) {
	switch action.Type {
	case models.ActionBan:
		status.IsBanned = true
		status.BannedUntil = untilFrom(now, action.DurationMinutes)
		status.TrustScore = clampScore(status.TrustScore-cfg.Trust.BanPenalty, cfg)
	case models.ActionMute:
		status.IsMuted = true
		status.MutedUntil = untilFrom(now, action.DurationMinutes)
		status.TrustScore = clampScore(status.TrustScore-cfg.Trust.MutePenalty, cfg)
	case models.ActionStrike:
		status.Strikes++
		status.TrustScore = clampScore(status.TrustScore-cfg.Trust.StrikePenalty, cfg)
	case models.ActionWarning:
		status.TrustScore = clampScore(status.TrustScore-cfg.Trust.WarningPenalty, cfg)
	case models.ActionKick:
		// Kicks are transport-level removals; they leave the score alone and
		// only land in the violation bookkeeping below.
	}

	t := now
	status.LastViolation = &t
	status.ViolationCount++
}

func clampScore(score int, cfg Config) int {
	if score < cfg.Trust.MinScore {
		return cfg.Trust.MinScore
	}
	if score > cfg.Trust.MaxScore {
		return cfg.Trust.MaxScore
	}
	return score
}

// expiryFrom computes the action record's expiry; nil duration or a
// non-positive value means the record never expires.
func expiryFrom(now time.Time, durationMinutes *int) *time.Time {
	return untilFrom(now, durationMinutes)
}

func untilFrom(now time.Time, durationMinutes *int) *time.Time {
	if durationMinutes == nil || *durationMinutes <= 0 {
		return nil
	}
	t := now.Add(time.Duration(*durationMinutes) * time.Minute)
	return &t
}

func automationLabel(moderatorID *uint) string {
	if moderatorID == nil {
		return "automated"
	}
	return "manual"
}
