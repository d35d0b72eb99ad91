package moderation

import (
	"context"
	"fmt"
	"log/slog"

	"bullpen/internal/observability"
)

// CleanupExpiredActions is the periodic housekeeping pass: it deactivates
// action records whose expiry has passed and clears expired mute/ban flags on
// status rows. It never runs on the message path, and missing a sweep does
// not affect chat gating because the status oracle recomputes expiry on every
// read. Historical action fields are never mutated.
func (e *Engine) CleanupExpiredActions(ctx context.Context) (int64, error) {
	now := e.now().UTC()

	deactivated, err := e.actions.DeactivateExpired(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "sweep failed to deactivate expired actions", "err", err)
		return 0, fmt.Errorf("deactivate expired actions: %w", err)
	}

	normalized, err := e.statuses.NormalizeExpired(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "sweep failed to normalize status rows", "err", err)
		return deactivated, fmt.Errorf("normalize status rows: %w", err)
	}

	observability.SweepPurged.Add(float64(deactivated))
	if deactivated > 0 || normalized > 0 {
		slog.InfoContext(ctx, "moderation sweep completed",
			"actions_deactivated", deactivated,
			"statuses_normalized", normalized,
		)
	}
	return deactivated, nil
}
