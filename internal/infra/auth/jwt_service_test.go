package auth

import (
	"strings"
	"testing"
	"time"

	"identity/config"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(secret string) *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			SessionTokenTTL: 24 * time.Hour,
			EmailTokenTTL:   15 * time.Minute,
		},
	}
	cfg.SecretKey.Token = secret

	return cfg
}

func newTestJWTService(t *testing.T) (*jwtService, *time.Time) {
	t.Helper()

	svc, err := NewJWTService(newTestConfig(strings.Repeat("s", 32)))
	require.NoError(t, err)

	concrete, ok := svc.(*jwtService)
	require.True(t, ok)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	concrete.now = func() time.Time { return now }

	return concrete, &now
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	_, err := NewJWTService(newTestConfig("too-short"))
	require.Error(t, err)

	_, err = NewJWTService(newTestConfig(strings.Repeat("s", 31)))
	require.Error(t, err)

	_, err = NewJWTService(newTestConfig(strings.Repeat("s", 32)))
	require.NoError(t, err)
}

func TestJWTService_IssueAndVerify_RoundTrip(t *testing.T) {
	svc, _ := newTestJWTService(t)

	for _, purpose := range []service.Purpose{
		service.PurposeSession,
		service.PurposeEmailVerification,
		service.PurposePasswordReset,
	} {
		token, err := svc.Issue("subject-1", purpose)
		require.NoError(t, err)

		subject, err := svc.Verify(token, purpose)
		require.NoError(t, err)
		assert.Equal(t, "subject-1", subject)
	}
}

func TestJWTService_Verify_RejectsCrossPurpose(t *testing.T) {
	svc, _ := newTestJWTService(t)

	token, err := svc.Issue("subject-1", service.PurposeEmailVerification)
	require.NoError(t, err)

	_, err = svc.Verify(token, service.PurposePasswordReset)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)

	_, err = svc.Verify(token, service.PurposeSession)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
}

func TestJWTService_Verify_RejectsExpired(t *testing.T) {
	svc, now := newTestJWTService(t)

	token, err := svc.Issue("subject-1", service.PurposeEmailVerification)
	require.NoError(t, err)

	// Still valid just inside the TTL.
	*now = now.Add(14 * time.Minute)
	_, err = svc.Verify(token, service.PurposeEmailVerification)
	require.NoError(t, err)

	// Dead once the TTL has passed.
	*now = now.Add(2 * time.Minute)
	_, err = svc.Verify(token, service.PurposeEmailVerification)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
}

func TestJWTService_Verify_RejectsTampering(t *testing.T) {
	svc, _ := newTestJWTService(t)

	token, err := svc.Issue("subject-1", service.PurposeSession)
	require.NoError(t, err)

	tampered := token + "xx"
	_, err = svc.Verify(tampered, service.PurposeSession)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)

	_, err = svc.Verify("not-a-jwt", service.PurposeSession)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
}

func TestJWTService_Verify_RejectsOtherSecret(t *testing.T) {
	svc, _ := newTestJWTService(t)

	other, err := NewJWTService(newTestConfig(strings.Repeat("x", 32)))
	require.NoError(t, err)

	token, err := other.Issue("subject-1", service.PurposeSession)
	require.NoError(t, err)

	_, err = svc.Verify(token, service.PurposeSession)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
}
