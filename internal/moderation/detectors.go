package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"bullpen/internal/observability"
)

// Detector confidences mirror the tuned production values.
const (
	rateLimitConfidence     = 95
	repeatedCharsConfidence = 80
	duplicateConfidence     = 90
	toxicityConfidence      = 85
	pumpDumpConfidence      = 90
	maliciousLinkConfidence = 95
	capsSpamConfidence      = 70
	repeatMessageConfidence = 85
)

// repeatedRunLength is the run of identical characters treated as visual spam.
const repeatedRunLength = 10

// detect runs every detector against one message. Detectors are independent:
// a single message can trigger several of them, and all findings are kept for
// the escalation resolver. blocked reports a counter-store outage under the
// fail-closed policy and never contributes a violation.
func (e *Engine) detect(ctx context.Context, userID uint, content string, cfg Config) (violations []Violation, blocked bool) {
	violations = make([]Violation, 0, 4)

	v, blocked := e.detectSpam(ctx, userID, content, cfg)
	if v != nil {
		violations = append(violations, *v)
	}
	if v := e.detectToxicity(content, cfg); v != nil {
		violations = append(violations, *v)
	}
	if v := e.detectPumpDump(content, cfg); v != nil {
		violations = append(violations, *v)
	}
	if v := e.detectMaliciousLink(content); v != nil {
		violations = append(violations, *v)
	}
	if v := e.detectCapsSpam(content, cfg); v != nil {
		violations = append(violations, *v)
	}
	if v := e.detectRepeatMessage(ctx, userID, content, cfg); v != nil {
		violations = append(violations, *v)
	}

	for _, v := range violations {
		observability.ViolationsDetected.WithLabelValues(string(v.Type), v.Severity.String()).Inc()
		slog.InfoContext(ctx, "violation detected",
			"user_id", userID,
			"violation_type", string(v.Type),
			"severity", v.Severity.String(),
			"confidence", v.Confidence,
		)
	}

	return violations, blocked
}

// detectSpam runs three sub-checks and reports only the first hit: the rate
// limiter, repeated-character scan, and the duplicate suppressor. Overlap
// with the repeat-message detector is deliberate; the two operate on
// different windows and stores.
//
// A counter-store error is never a finding. Under fail-open the check is
// skipped; under fail-closed it is surfaced as blocked so the caller can
// reject the message without attributing a violation to the user.
func (e *Engine) detectSpam(ctx context.Context, userID uint, content string, cfg Config) (*Violation, bool) {
	rl, err := e.CheckRateLimit(ctx, userID, cfg)
	switch {
	case err != nil:
		slog.WarnContext(ctx, "rate limiter unavailable",
			"user_id", userID, "detector", "spam", "err", err)
		if cfg.FailClosed {
			return nil, true
		}
	case !rl.Allowed:
		return &Violation{
			Type:       ViolationSpam,
			Severity:   SeverityHigh,
			Confidence: rateLimitConfidence,
			Details:    fmt.Sprintf("rate limit exceeded, window resets at %s", rl.ResetAt.Format(time.RFC3339)),
		}, false
	}

	if hasRepeatedRun(content, repeatedRunLength) {
		return &Violation{
			Type:       ViolationSpam,
			Severity:   SeverityMedium,
			Confidence: repeatedCharsConfidence,
			Details:    "excessive repeated characters",
		}, false
	}

	dup, err := e.IsDuplicate(ctx, userID, content)
	if err != nil {
		slog.WarnContext(ctx, "duplicate suppressor unavailable",
			"user_id", userID, "detector", "spam", "err", err)
		return nil, cfg.FailClosed
	}
	if dup {
		return &Violation{
			Type:       ViolationSpam,
			Severity:   SeverityHigh,
			Confidence: duplicateConfidence,
			Details:    "identical message sent within dedupe window",
		}, false
	}

	return nil, false
}

func (e *Engine) detectToxicity(content string, cfg Config) *Violation {
	if !cfg.Toxicity.Enabled {
		return nil
	}
	confidence, matched := e.classifiers.Toxicity.Classify(content)
	if !matched {
		return nil
	}
	return &Violation{
		Type:       ViolationToxicity,
		Severity:   SeverityHigh,
		Confidence: confidence,
		Details:    "toxic language",
	}
}

func (e *Engine) detectPumpDump(content string, cfg Config) *Violation {
	if !cfg.PumpDump.Enabled {
		return nil
	}
	confidence, matched := e.classifiers.PumpDump.Classify(content)
	if !matched {
		return nil
	}
	return &Violation{
		Type:       ViolationPumpDump,
		Severity:   SeverityCritical,
		Confidence: confidence,
		Details:    "market manipulation language",
	}
}

// detectMaliciousLink has no config gate: phishing links are always policed.
func (e *Engine) detectMaliciousLink(content string) *Violation {
	confidence, matched := e.classifiers.MaliciousLink.Classify(content)
	if !matched {
		return nil
	}
	return &Violation{
		Type:       ViolationMaliciousLink,
		Severity:   SeverityCritical,
		Confidence: confidence,
		Details:    "URL shortener or phishing vocabulary",
	}
}

// detectCapsSpam fires only when the caps ratio strictly exceeds the
// threshold and the message is strictly longer than the configured minimum.
func (e *Engine) detectCapsSpam(content string, cfg Config) *Violation {
	if !cfg.CapsSpam.Enabled {
		return nil
	}
	runes := []rune(content)
	if len(runes) == 0 || len(runes) <= cfg.CapsSpam.MinMessageLength {
		return nil
	}

	upper := 0
	for _, r := range runes {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	ratio := float64(upper) / float64(len(runes))
	if ratio <= cfg.CapsSpam.CapsRatioThreshold {
		return nil
	}
	return &Violation{
		Type:       ViolationCapsSpam,
		Severity:   SeverityLow,
		Confidence: capsSpamConfidence,
		Details:    fmt.Sprintf("caps ratio %.2f over threshold %.2f", ratio, cfg.CapsSpam.CapsRatioThreshold),
	}
}

// detectRepeatMessage counts case-insensitive copies of the message among the
// user's recent history in the persistent store. Store errors are logged and
// treated as no finding; message history is an enrichment signal, not a gate.
func (e *Engine) detectRepeatMessage(ctx context.Context, userID uint, content string, cfg Config) *Violation {
	threshold := cfg.Spam.DuplicateMessageThreshold
	since := e.now().Add(-time.Duration(cfg.Spam.DuplicateMessageWindowSeconds) * time.Second)

	recent, err := e.messages.FindRecent(ctx, userID, since, threshold)
	if err != nil {
		slog.WarnContext(ctx, "recent message lookup failed",
			"user_id", userID, "detector", "repeat_message", "err", err)
		return nil
	}

	normalized := strings.ToLower(strings.TrimSpace(content))
	count := 0
	for _, msg := range recent {
		if strings.ToLower(strings.TrimSpace(msg.Content)) == normalized {
			count++
		}
	}
	if count < threshold {
		return nil
	}
	return &Violation{
		Type:       ViolationRepeatMessage,
		Severity:   SeverityMedium,
		Confidence: repeatMessageConfidence,
		Details:    fmt.Sprintf("message repeated %d times within %ds", count, cfg.Spam.DuplicateMessageWindowSeconds),
	}
}

// hasRepeatedRun reports whether content contains a run of at least n
// identical characters. Whitespace runs are ignored.
func hasRepeatedRun(content string, n int) bool {
	var prev rune
	run := 0
	for _, r := range content {
		if r == prev && !unicode.IsSpace(r) {
			run++
			if run >= n {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}
