package models

import "time"

// ActionType identifies the kind of enforcement action taken against a user.
type ActionType string

// Enforcement action types, ordered roughly by severity.
const (
	ActionWarning ActionType = "warning"
	ActionStrike  ActionType = "strike"
	ActionMute    ActionType = "mute"
	ActionBan     ActionType = "ban"
	ActionKick    ActionType = "kick"
)

// ModerationAction is the persisted audit record of an enforcement action.
// Rows are immutable once created; the cleanup sweeper only flips IsActive
// when ExpiresAt has passed.
type ModerationAction struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// AuditID is a stable external identifier for cross-system audit trails.
	AuditID         string     `gorm:"size:36;uniqueIndex;not null" json:"audit_id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	User            *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type            ActionType `gorm:"size:16;not null;index" json:"type"`
	Reason          string     `gorm:"type:text;not null" json:"reason"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	// ModeratorID is nil for automated actions.
	ModeratorID *uint      `gorm:"index" json:"moderator_id,omitempty"`
	Moderator   *User      `gorm:"foreignKey:ModeratorID" json:"moderator,omitempty"`
	ExpiresAt   *time.Time `gorm:"index" json:"expires_at,omitempty"`
	IsActive    bool       `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (ModerationAction) TableName() string {
	return "moderation_actions"
}

// UserModerationStatus is the per-user trust ledger row. MutedUntil and
// BannedUntil being nil while the flag is set means the restriction is
// permanent. IsMuted/IsBanned are write-time flags; readers must compare the
// *Until timestamps against the current time (lazy expiry).
type UserModerationStatus struct {
	UserID         uint       `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User           *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TrustScore     int        `gorm:"not null" json:"trust_score"`
	Strikes        int        `gorm:"not null;default:0" json:"strikes"`
	IsMuted        bool       `gorm:"not null;default:false" json:"is_muted"`
	MutedUntil     *time.Time `json:"muted_until,omitempty"`
	IsBanned       bool       `gorm:"not null;default:false" json:"is_banned"`
	BannedUntil    *time.Time `json:"banned_until,omitempty"`
	LastViolation  *time.Time `json:"last_violation,omitempty"`
	ViolationCount int        `gorm:"not null;default:0" json:"violation_count"`
	// Version guards the read-modify-write trust transition with optimistic
	// concurrency. Every successful update increments it.
	Version   int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (UserModerationStatus) TableName() string {
	return "user_moderation_statuses"
}
