package moderation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Engine is the moderation policy engine. It owns no user state in process:
// every call re-reads the counter and record stores, so instances scale
// horizontally and never serve stale trust or mute state.
type Engine struct {
	counters    CounterStore
	actions     ActionStore
	statuses    StatusStore
	messages    MessageStore
	classifiers ClassifierSet
	tracer      trace.Tracer
	now         func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClassifiers replaces the built-in vocabulary classifiers.
func WithClassifiers(set ClassifierSet) Option {
	return func(e *Engine) { e.classifiers = set }
}

// WithClock overrides the engine's time source. Tests use it to verify lazy
// expiry without sleeping.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine wires the engine to its stores.
func NewEngine(counters CounterStore, actions ActionStore, statuses StatusStore, messages MessageStore, opts ...Option) *Engine {
	e := &Engine{
		counters:    counters,
		actions:     actions,
		statuses:    statuses,
		messages:    messages,
		classifiers: DefaultClassifiers(),
		tracer:      otel.Tracer("bullpen/moderation"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AnalyzeMessage classifies one message and resolves the enforcement action
// its violations call for. It mutates no business state; its only side
// effects are the rate-limit counter and dedupe marker writes. Whether to
// execute the resolved action is the caller's decision.
func (e *Engine) AnalyzeMessage(ctx context.Context, userID uint, content string, cfg Config) Result {
	ctx, span := e.tracer.Start(ctx, "moderation.AnalyzeMessage",
		trace.WithAttributes(attribute.Int64("user.id", int64(userID))))
	defer span.End()

	violations, blocked := e.detect(ctx, userID, content, cfg)
	action := Resolve(violations, cfg)
	summary := Summarize(violations)

	span.SetAttributes(
		attribute.Int("moderation.violations", len(violations)),
		attribute.String("moderation.action", string(action.Type)),
		attribute.Bool("moderation.blocked", blocked),
	)

	if len(violations) > 0 || blocked {
		slog.InfoContext(ctx, "message analysis resolved action",
			"user_id", userID,
			"action", string(action.Type),
			"violations", len(violations),
			"blocked", blocked,
			"summary", summary,
		)
	}

	return Result{
		Violations: violations,
		Action:     action,
		Summary:    summary,
		Blocked:    blocked,
	}
}
