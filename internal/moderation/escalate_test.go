package moderation

import (
	"testing"

	"bullpen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_SeverityPrecedence(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name       string
		violations []Violation
		wantType   models.ActionType
		wantReason string
	}{
		{
			name:       "critical bans",
			violations: []Violation{{Type: ViolationPumpDump, Severity: SeverityCritical}},
			wantType:   models.ActionBan,
			wantReason: "Critical violation detected",
		},
		{
			name:       "high mutes",
			violations: []Violation{{Type: ViolationToxicity, Severity: SeverityHigh}},
			wantType:   models.ActionMute,
			wantReason: "High severity violation",
		},
		{
			name:       "medium strikes",
			violations: []Violation{{Type: ViolationRepeatMessage, Severity: SeverityMedium}},
			wantType:   models.ActionStrike,
			wantReason: "Medium severity violation",
		},
		{
			name:       "low warns",
			violations: []Violation{{Type: ViolationCapsSpam, Severity: SeverityLow}},
			wantType:   models.ActionWarning,
			wantReason: "Low severity violation",
		},
		{
			name: "critical dominates a mixed set",
			violations: []Violation{
				{Type: ViolationCapsSpam, Severity: SeverityLow},
				{Type: ViolationMaliciousLink, Severity: SeverityCritical},
				{Type: ViolationToxicity, Severity: SeverityHigh},
			},
			wantType:   models.ActionBan,
			wantReason: "Critical violation detected",
		},
		{
			name: "count within a bucket is irrelevant",
			violations: []Violation{
				{Type: ViolationCapsSpam, Severity: SeverityLow},
				{Type: ViolationCapsSpam, Severity: SeverityLow},
				{Type: ViolationCapsSpam, Severity: SeverityLow},
			},
			wantType:   models.ActionWarning,
			wantReason: "Low severity violation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action := Resolve(tt.violations, cfg)
			assert.Equal(t, tt.wantType, action.Type)
			assert.Equal(t, tt.wantReason, action.Reason)
		})
	}
}

func TestResolve_Durations(t *testing.T) {
	cfg := DefaultConfig()

	ban := Resolve([]Violation{{Severity: SeverityCritical}}, cfg)
	require.NotNil(t, ban.DurationMinutes)
	assert.Equal(t, cfg.Durations.BanMinutes, *ban.DurationMinutes)

	mute := Resolve([]Violation{{Severity: SeverityHigh}}, cfg)
	require.NotNil(t, mute.DurationMinutes)
	assert.Equal(t, cfg.Durations.MuteMinutes, *mute.DurationMinutes)

	strike := Resolve([]Violation{{Severity: SeverityMedium}}, cfg)
	assert.Nil(t, strike.DurationMinutes)
}

func TestResolve_EmptySet(t *testing.T) {
	action := Resolve(nil, DefaultConfig())

	assert.Equal(t, models.ActionWarning, action.Type)
	assert.Equal(t, "No violations detected", action.Reason)
	assert.Nil(t, action.DurationMinutes)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "No violations detected", Summarize(nil))

	got := Summarize([]Violation{
		{Type: ViolationSpam},
		{Type: ViolationPumpDump},
	})
	assert.Equal(t, "Violations detected: spam, pump_dump", got)
}
