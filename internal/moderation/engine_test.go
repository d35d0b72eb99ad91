package moderation

import (
	"context"
	"testing"
	"time"

	"bullpen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterStub struct {
	incrementFn func(context.Context, string) (int64, error)
	expireFn    func(context.Context, string, time.Duration) error
	existsFn    func(context.Context, string) (bool, error)
	setNXFn     func(context.Context, string, string, time.Duration) (bool, error)
	getFn       func(context.Context, string) (string, error)
}

func (s *counterStub) Increment(ctx context.Context, key string) (int64, error) {
	return s.incrementFn(ctx, key)
}
func (s *counterStub) ExpireNX(ctx context.Context, key string, ttl time.Duration) error {
	return s.expireFn(ctx, key, ttl)
}
func (s *counterStub) Exists(ctx context.Context, key string) (bool, error) {
	return s.existsFn(ctx, key)
}
func (s *counterStub) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.setNXFn(ctx, key, value, ttl)
}
func (s *counterStub) Get(ctx context.Context, key string) (string, error) {
	return s.getFn(ctx, key)
}

// noopCounters behaves like an empty Redis: every counter starts fresh and
// every dedupe marker is absent.
func noopCounters() *counterStub {
	return &counterStub{
		incrementFn: func(context.Context, string) (int64, error) { return 1, nil },
		expireFn:    func(context.Context, string, time.Duration) error { return nil },
		existsFn:    func(context.Context, string) (bool, error) { return false, nil },
		setNXFn:     func(context.Context, string, string, time.Duration) (bool, error) { return true, nil },
		getFn:       func(context.Context, string) (string, error) { return "", nil },
	}
}

type actionStub struct {
	createFn            func(context.Context, *models.ModerationAction) error
	listForUserFn       func(context.Context, uint, int) ([]models.ModerationAction, error)
	deactivateExpiredFn func(context.Context, time.Time) (int64, error)
}

func (s *actionStub) Create(ctx context.Context, a *models.ModerationAction) error {
	return s.createFn(ctx, a)
}
func (s *actionStub) ListForUser(ctx context.Context, userID uint, limit int) ([]models.ModerationAction, error) {
	return s.listForUserFn(ctx, userID, limit)
}
func (s *actionStub) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.deactivateExpiredFn(ctx, now)
}

func noopActions() *actionStub {
	return &actionStub{
		createFn: func(context.Context, *models.ModerationAction) error { return nil },
		listForUserFn: func(context.Context, uint, int) ([]models.ModerationAction, error) {
			return nil, nil
		},
		deactivateExpiredFn: func(context.Context, time.Time) (int64, error) { return 0, nil },
	}
}

type statusStub struct {
	findFn             func(context.Context, uint) (*models.UserModerationStatus, error)
	createFn           func(context.Context, *models.UserModerationStatus) error
	updateVersionedFn  func(context.Context, *models.UserModerationStatus) error
	normalizeExpiredFn func(context.Context, time.Time) (int64, error)
}

func (s *statusStub) Find(ctx context.Context, userID uint) (*models.UserModerationStatus, error) {
	return s.findFn(ctx, userID)
}
func (s *statusStub) Create(ctx context.Context, st *models.UserModerationStatus) error {
	return s.createFn(ctx, st)
}
func (s *statusStub) UpdateVersioned(ctx context.Context, st *models.UserModerationStatus) error {
	return s.updateVersionedFn(ctx, st)
}
func (s *statusStub) NormalizeExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.normalizeExpiredFn(ctx, now)
}

// memoryStatuses keeps one in-memory status row and enforces the version
// check the way the real repository does.
type memoryStatuses struct {
	row     *models.UserModerationStatus
	creates int
	updates int
}

func (m *memoryStatuses) Find(_ context.Context, userID uint) (*models.UserModerationStatus, error) {
	if m.row == nil || m.row.UserID != userID {
		return nil, nil
	}
	cp := *m.row
	return &cp, nil
}

func (m *memoryStatuses) Create(_ context.Context, st *models.UserModerationStatus) error {
	m.creates++
	cp := *st
	m.row = &cp
	return nil
}

func (m *memoryStatuses) UpdateVersioned(_ context.Context, st *models.UserModerationStatus) error {
	m.updates++
	if m.row == nil || m.row.Version != st.Version {
		return ErrVersionConflict
	}
	cp := *st
	cp.Version++
	m.row = &cp
	st.Version++
	return nil
}

func (m *memoryStatuses) NormalizeExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type messageStub struct {
	findRecentFn func(context.Context, uint, time.Time, int) ([]models.Message, error)
}

func (s *messageStub) FindRecent(ctx context.Context, userID uint, since time.Time, limit int) ([]models.Message, error) {
	return s.findRecentFn(ctx, userID, since, limit)
}

func noopMessages() *messageStub {
	return &messageStub{
		findRecentFn: func(context.Context, uint, time.Time, int) ([]models.Message, error) {
			return nil, nil
		},
	}
}

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(noopCounters(), noopActions(), &memoryStatuses{}, noopMessages(), opts...)
}

func TestAnalyzeMessage_CleanMessage(t *testing.T) {
	e := newTestEngine()

	result := e.AnalyzeMessage(context.Background(), 1, "good morning, watching the open today", DefaultConfig())

	assert.Empty(t, result.Violations)
	assert.Equal(t, models.ActionWarning, result.Action.Type)
	assert.Equal(t, "No violations detected", result.Action.Reason)
	assert.Equal(t, "No violations detected", result.Summary)
}

func TestAnalyzeMessage_HighestSeverityWins(t *testing.T) {
	e := newTestEngine()
	cfg := DefaultConfig()

	// Caps spam alone is a warning; a pump-and-dump phrase in the same
	// message must escalate to a ban.
	result := e.AnalyzeMessage(context.Background(), 1, "GUARANTEED PROFIT EVERYONE BUY RIGHT NOW", cfg)

	require.NotEmpty(t, result.Violations)
	types := make([]ViolationType, 0, len(result.Violations))
	for _, v := range result.Violations {
		types = append(types, v.Type)
	}
	assert.Contains(t, types, ViolationPumpDump)
	assert.Contains(t, types, ViolationCapsSpam)
	assert.Equal(t, models.ActionBan, result.Action.Type)
	require.NotNil(t, result.Action.DurationMinutes)
	assert.Equal(t, cfg.Durations.BanMinutes, *result.Action.DurationMinutes)
}

func TestAnalyzeMessage_NoStateMutation(t *testing.T) {
	statuses := &memoryStatuses{}
	created := 0
	actions := noopActions()
	actions.createFn = func(context.Context, *models.ModerationAction) error {
		created++
		return nil
	}
	e := NewEngine(noopCounters(), actions, statuses, noopMessages())

	result := e.AnalyzeMessage(context.Background(), 1, "you are an idiot", DefaultConfig())

	require.NotEmpty(t, result.Violations)
	assert.Zero(t, created, "analysis must not persist actions")
	assert.Nil(t, statuses.row, "analysis must not touch the trust ledger")
}
