package ratelimit

import (
	"testing"
	"time"

	domainerrors "identity/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_NilCursorAllows(t *testing.T) {
	assert.NoError(t, Check(nil, time.Minute, time.Now()))
}

func TestCheck_OutsideWindowAllows(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-61 * time.Second)

	assert.NoError(t, Check(&last, time.Minute, now))
}

func TestCheck_ExactBoundaryAllows(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-time.Minute)

	assert.NoError(t, Check(&last, time.Minute, now))
}

func TestCheck_InsideWindowRejectsWithRemaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-15 * time.Second)

	err := Check(&last, time.Minute, now)
	require.Error(t, err)

	var rateErr *domainerrors.RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.EqualValues(t, 45, rateErr.RetryAfterSeconds())
	assert.Equal(t, 429, rateErr.HTTPCode())
	assert.Contains(t, rateErr.Message(), "retry in: 45 seconds")
}

func TestCheck_RemainingRoundsUp(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-59*time.Second - 500*time.Millisecond)

	err := Check(&last, time.Minute, now)
	require.Error(t, err)

	var rateErr *domainerrors.RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.EqualValues(t, 1, rateErr.RetryAfterSeconds())
}
