// Package ratelimit implements the per-action cooldown check. It is a pure
// function of the last-action cursor, the window and the supplied clock;
// callers own serialization of the read-check-write sequence around it.
package ratelimit

import (
	"time"

	domainerrors "identity/internal/domain/errors"
)

// Check returns nil when the action is allowed: the cursor is unset, or at
// least window has elapsed since it. Inside the window it returns a
// RateLimitError carrying the remaining whole seconds, rounded up so a
// caller that waits exactly that long is guaranteed to pass.
func Check(lastActionAt *time.Time, window time.Duration, now time.Time) error {
	if lastActionAt == nil {
		return nil
	}

	allowedAt := lastActionAt.Add(window)
	if !now.Before(allowedAt) {
		return nil
	}

	remaining := allowedAt.Sub(now)
	seconds := int64((remaining + time.Second - 1) / time.Second)

	return domainerrors.NewRateLimitError(seconds)
}
