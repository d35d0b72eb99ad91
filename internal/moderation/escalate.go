package moderation

import (
	"strings"

	"bullpen/internal/models"
)

// Escalation reasons surfaced on resolved actions.
const (
	reasonCritical     = "Critical violation detected"
	reasonHigh         = "High severity violation"
	reasonMedium       = "Medium severity violation"
	reasonLow          = "Low severity violation"
	reasonNoViolations = "No violations detected"
)

// Resolve maps a violation set to a single enforcement action using strict
// severity precedence: any critical violation bans, else any high mutes, else
// any medium strikes, else any low warns. Within a bucket neither the count
// nor the specific violation types change the outcome. An empty set resolves
// to a warning carrying the no-violations reason; callers treat that as "no
// action needed", not as a disciplinary warning.
func Resolve(violations []Violation, cfg Config) Action {
	highest, found := Severity(-1), false
	for _, v := range violations {
		if !found || v.Severity > highest {
			highest, found = v.Severity, true
		}
	}

	switch {
	case found && highest == SeverityCritical:
		d := cfg.Durations.BanMinutes
		return Action{Type: models.ActionBan, DurationMinutes: &d, Reason: reasonCritical}
	case found && highest == SeverityHigh:
		d := cfg.Durations.MuteMinutes
		return Action{Type: models.ActionMute, DurationMinutes: &d, Reason: reasonHigh}
	case found && highest == SeverityMedium:
		return Action{Type: models.ActionStrike, Reason: reasonMedium}
	case found:
		return Action{Type: models.ActionWarning, Reason: reasonLow}
	default:
		return Action{Type: models.ActionWarning, Reason: reasonNoViolations}
	}
}

// Summarize builds the human-readable violation summary for audit reasons. It
// lists every triggered violation type, independent of which one drove the
// resolved action.
func Summarize(violations []Violation) string {
	if len(violations) == 0 {
		return reasonNoViolations
	}
	names := make([]string, 0, len(violations))
	for _, v := range violations {
		names = append(names, string(v.Type))
	}
	return "Violations detected: " + strings.Join(names, ", ")
}
