// Package moderation implements the automated chat-moderation policy engine:
// message classification, rate limiting, duplicate suppression, escalation of
// violations into enforcement actions, and the per-user trust ledger.
package moderation

import (
	"time"

	"bullpen/internal/models"
)

// Severity ranks how serious a violation is. Higher values dominate during
// escalation.
type Severity int

// Violation severities, in escalation precedence order.
const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ViolationType identifies which policy a message breached.
type ViolationType string

// Violation types produced by the detector pipeline.
const (
	ViolationSpam          ViolationType = "spam"
	ViolationToxicity      ViolationType = "toxicity"
	ViolationPumpDump      ViolationType = "pump_dump"
	ViolationMaliciousLink ViolationType = "malicious_link"
	ViolationCapsSpam      ViolationType = "caps_spam"
	ViolationRepeatMessage ViolationType = "repeat_message"
)

// Violation is a single detector's finding against one message. Violations
// are ephemeral: they feed the escalation resolver and the action reason text
// but are never persisted directly.
type Violation struct {
	Type       ViolationType `json:"type"`
	Severity   Severity      `json:"severity"`
	Confidence int           `json:"confidence"`
	Details    string        `json:"details"`
}

// Action is the enforcement decision the escalation resolver produces for one
// analyzed message. DurationMinutes is nil for actions without a time bound;
// for mutes and bans a nil or non-positive duration means permanent.
type Action struct {
	Type            models.ActionType `json:"type"`
	DurationMinutes *int              `json:"duration_minutes,omitempty"`
	Reason          string            `json:"reason"`
}

// Result is the outcome of analyzing one message. Summary concatenates every
// triggered violation type for the human-readable audit reason, independent
// of which violation drove the action.
//
// Blocked reports a counter-store outage under the fail-closed policy. It is
// an infrastructure signal, not a policy finding: a blocked result carries no
// violation and callers must reject the message without executing any
// enforcement action.
type Result struct {
	Violations []Violation `json:"violations"`
	Action     Action      `json:"action"`
	Summary    string      `json:"summary"`
	Blocked    bool        `json:"blocked,omitempty"`
}

// StatusView is the live moderation status of a user, with mute/ban flags
// recomputed against the current time (lazy expiry).
type StatusView struct {
	UserID      uint       `json:"user_id"`
	CanChat     bool       `json:"can_chat"`
	IsMuted     bool       `json:"is_muted"`
	IsBanned    bool       `json:"is_banned"`
	MutedUntil  *time.Time `json:"muted_until,omitempty"`
	BannedUntil *time.Time `json:"banned_until,omitempty"`
	TrustScore  int        `json:"trust_score"`
	Strikes     int        `json:"strikes"`
}

// RateLimitResult reports the outcome of one fixed-window rate limit check.
type RateLimitResult struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}
