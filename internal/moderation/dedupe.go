package moderation

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	dedupeKeyPrefix = "chat:dedupe:%s"
	// dedupeTTL is the window in which an identical message from the same
	// user counts as a duplicate. The marker TTL is never extended on a hit,
	// so a resend right after expiry is admitted.
	dedupeTTL = 30 * time.Second
)

// IsDuplicate reports whether the user already sent this exact content within
// the dedupe window and marks it seen otherwise. Check and mark are one
// atomic SETNX round-trip, so two concurrent copies of the same message
// cannot both pass.
func (e *Engine) IsDuplicate(ctx context.Context, userID uint, content string) (bool, error) {
	key := fmt.Sprintf(dedupeKeyPrefix, messageFingerprint(userID, content))

	set, err := e.counters.SetNX(ctx, key, "1", dedupeTTL)
	if err != nil {
		return false, fmt.Errorf("dedupe setnx: %w", err)
	}
	return !set, nil
}

// messageFingerprint hashes the user and lowercased content so identical
// messages map to one marker key regardless of letter case.
func messageFingerprint(userID uint, content string) string {
	h := sha1.Sum([]byte(fmt.Sprintf("%d:%s", userID, strings.ToLower(content))))
	return hex.EncodeToString(h[:])
}
