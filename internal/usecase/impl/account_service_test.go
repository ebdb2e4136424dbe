package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	domainerrors "identity/internal/domain/errors"
	"identity/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Register_Success(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	output, err := f.service.Register(ctx, &usecase.RegisterInput{
		Email:     "Alice@Example.COM",
		Password:  "Password123!",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	require.NoError(t, err)
	assert.Equal(t, msgRegistered, output.Message)

	// Stored under the canonical email, unverified, with the send stamped.
	account, err := f.accounts.FindByEmail(ctx, "Alice@example.com")
	require.NoError(t, err)
	assert.False(t, account.Verified)
	assert.Equal(t, "hashed:Password123!", account.PasswordHash)
	require.NotNil(t, account.VerificationEmailSentAt)
	assert.Equal(t, f.clock.Now(), *account.VerificationEmailSentAt)
	assert.Equal(t, 1, f.mail.verificationCount())
}

func TestAccountService_Register_DuplicateEmail(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	f.register(ctx, "alice@example.com", false)

	_, err := f.service.Register(ctx, &usecase.RegisterInput{
		Email:    "alice@Example.com",
		Password: "Different456!",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrEmailAlreadyExists)
	assert.Equal(t, 1, f.mail.verificationCount())
}

func TestAccountService_Register_InvalidEmail(t *testing.T) {
	f := createTestAccountService()

	_, err := f.service.Register(context.Background(), &usecase.RegisterInput{
		Email:    "not-an-email",
		Password: "Password123!",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidArgument)
}

func TestAccountService_Register_MailFailureKeepsAccount(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	f.mail.failNext = errors.New("smtp unavailable")

	_, err := f.service.Register(ctx, &usecase.RegisterInput{
		Email:    "alice@example.com",
		Password: "Password123!",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrEmailDeliveryFailed)

	// The account survives with no cursor stamped, so a resend is allowed
	// immediately.
	account, err := f.accounts.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, account.VerificationEmailSentAt)

	require.NoError(t, f.service.ResendVerification(ctx, "alice@example.com"))
	assert.Equal(t, 1, f.mail.verificationCount())
}

func TestAccountService_Authenticate_Success(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	f.register(ctx, "alice@example.com", true)

	output, err := f.service.Authenticate(ctx, &usecase.AuthenticateInput{
		Email:    "alice@example.com",
		Password: "Password123!",
	})
	require.NoError(t, err)
	assert.Equal(t, msgAuthenticated, output.Message)
	assert.Equal(t, "session|alice@example.com", output.Token)
}

func TestAccountService_Authenticate_WrongPassword(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	f.register(ctx, "alice@example.com", true)

	_, err := f.service.Authenticate(ctx, &usecase.AuthenticateInput{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAccountService_Authenticate_UnknownEmailSameError(t *testing.T) {
	f := createTestAccountService()

	_, err := f.service.Authenticate(context.Background(), &usecase.AuthenticateInput{
		Email:    "ghost@example.com",
		Password: "Password123!",
	})
	require.Error(t, err)

	// Indistinguishable from a wrong password.
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAccountService_Authenticate_UnverifiedRejected(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	f.register(ctx, "alice@example.com", false)

	_, err := f.service.Authenticate(ctx, &usecase.AuthenticateInput{
		Email:    "alice@example.com",
		Password: "Password123!",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrEmailVerificationRequired)
}

func TestAccountService_VerifyEmail_FlipsLatchOnce(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	id := f.register(ctx, "alice@example.com", false)
	token := "email_verification|" + id.String()

	require.NoError(t, f.service.VerifyEmail(ctx, token))
	assert.True(t, f.accounts.get(id).Verified)

	// Second consumption of the same link is a silent success.
	require.NoError(t, f.service.VerifyEmail(ctx, token))
	assert.True(t, f.accounts.get(id).Verified)
}

func TestAccountService_VerifyEmail_RejectsWrongPurpose(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	id := f.register(ctx, "alice@example.com", false)

	// A reset token must never verify an email.
	err := f.service.VerifyEmail(ctx, "password_reset|"+id.String())
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
	assert.False(t, f.accounts.get(id).Verified)
}

func TestAccountService_VerifyEmail_MalformedSubject(t *testing.T) {
	f := createTestAccountService()

	err := f.service.VerifyEmail(context.Background(), "email_verification|not-a-uuid")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
}

func TestAccountService_ResendVerification_Cooldown(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	f.register(ctx, "alice@example.com", false)
	require.Equal(t, 1, f.mail.verificationCount())

	// Immediately inside the window.
	err := f.service.ResendVerification(ctx, "alice@example.com")
	require.Error(t, err)

	var rateErr *domainerrors.RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.EqualValues(t, 60, rateErr.RetryAfterSeconds())

	// Partway through, the remaining time shrinks.
	f.clock.Advance(45 * time.Second)
	err = f.service.ResendVerification(ctx, "alice@example.com")
	require.ErrorAs(t, err, &rateErr)
	assert.EqualValues(t, 15, rateErr.RetryAfterSeconds())

	// Past the window the resend goes out and restarts the cooldown.
	f.clock.Advance(15 * time.Second)
	require.NoError(t, f.service.ResendVerification(ctx, "alice@example.com"))
	assert.Equal(t, 2, f.mail.verificationCount())

	err = f.service.ResendVerification(ctx, "alice@example.com")
	require.ErrorAs(t, err, &rateErr)
	assert.EqualValues(t, 60, rateErr.RetryAfterSeconds())
}

func TestAccountService_ResendVerification_AlreadyVerified(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	f.register(ctx, "alice@example.com", true)

	err := f.service.ResendVerification(ctx, "alice@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidArgument)
}

func TestAccountService_ResendVerification_UnknownEmail(t *testing.T) {
	f := createTestAccountService()

	err := f.service.ResendVerification(context.Background(), "ghost@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
}

func TestAccountService_ResendVerification_ConcurrentSendsOnce(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	f.register(ctx, "alice@example.com", false)
	f.clock.Advance(2 * time.Minute)

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.service.ResendVerification(ctx, "alice@example.com")
		}(i)
	}
	wg.Wait()

	// Exactly one send wins; the rest hit the refreshed cooldown.
	sends := 0
	for _, err := range results {
		if err == nil {
			sends++

			continue
		}

		var rateErr *domainerrors.RateLimitError
		assert.ErrorAs(t, err, &rateErr)
	}
	assert.Equal(t, 1, sends)
	assert.Equal(t, 2, f.mail.verificationCount())
}

func TestAccountService_PasswordResetFlow(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	id := f.register(ctx, "alice@example.com", true)

	require.NoError(t, f.service.RequestPasswordReset(ctx, "alice@example.com"))
	require.Len(t, f.mail.resets, 1)
	assert.Equal(t, "password_reset|"+id.String(), f.mail.resets[0])

	require.NoError(t, f.service.ResetPassword(ctx, &usecase.ResetPasswordInput{
		Token:       f.mail.resets[0],
		NewPassword: "NewPassword456!",
	}))

	// Old credential is dead, new one works.
	_, err := f.service.Authenticate(ctx, &usecase.AuthenticateInput{
		Email:    "alice@example.com",
		Password: "Password123!",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = f.service.Authenticate(ctx, &usecase.AuthenticateInput{
		Email:    "alice@example.com",
		Password: "NewPassword456!",
	})
	assert.NoError(t, err)
}

func TestAccountService_RequestPasswordReset_Cooldown(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	f.register(ctx, "alice@example.com", true)

	require.NoError(t, f.service.RequestPasswordReset(ctx, "alice@example.com"))

	err := f.service.RequestPasswordReset(ctx, "alice@example.com")
	require.Error(t, err)

	var rateErr *domainerrors.RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.EqualValues(t, 60, rateErr.RetryAfterSeconds())
}

func TestAccountService_RequestPasswordReset_IndependentOfVerificationCursor(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	// Registration just stamped the verification cursor; the reset flow has
	// its own cursor and is not throttled by it.
	f.register(ctx, "alice@example.com", true)

	require.NoError(t, f.service.RequestPasswordReset(ctx, "alice@example.com"))
}

func TestAccountService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	f := createTestAccountService()

	err := f.service.RequestPasswordReset(context.Background(), "ghost@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
}

func TestAccountService_RequestPasswordReset_MailFailureLeavesCursorUnset(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	id := f.register(ctx, "alice@example.com", true)

	f.mail.failNext = errors.New("smtp unavailable")
	err := f.service.RequestPasswordReset(ctx, "alice@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrEmailDeliveryFailed)

	// A failed send must not start the cooldown.
	assert.Nil(t, f.accounts.get(id).PasswordResetEmailSentAt)
	require.NoError(t, f.service.RequestPasswordReset(ctx, "alice@example.com"))
}

func TestAccountService_ResetPassword_RejectsWrongPurpose(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	id := f.register(ctx, "alice@example.com", true)

	err := f.service.ResetPassword(ctx, &usecase.ResetPasswordInput{
		Token:       "email_verification|" + id.String(),
		NewPassword: "NewPassword456!",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
}

func TestAccountService_ResetPassword_EmptyPassword(t *testing.T) {
	f := createTestAccountService()

	err := f.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		Token:       "password_reset|whatever",
		NewPassword: "",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidArgument)
}

func TestAccountService_GetByID(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	id := f.register(ctx, "alice@example.com", false)

	profile, err := f.service.GetByID(ctx, id.String())
	require.NoError(t, err)
	assert.Equal(t, id.String(), profile.ID)
	assert.Equal(t, "alice@example.com", profile.Email)
	assert.Equal(t, "Test", profile.FirstName)
	assert.False(t, profile.Verified)
}

func TestAccountService_GetByID_UnparseableTreatedAsUnknown(t *testing.T) {
	f := createTestAccountService()

	_, err := f.service.GetByID(context.Background(), "definitely-not-a-uuid")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
}

func TestAccountService_GetByEmail_Unknown(t *testing.T) {
	f := createTestAccountService()

	_, err := f.service.GetByEmail(context.Background(), "ghost@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
}

func TestAccountService_UpdateDetails_PartialUpdate(t *testing.T) {
	f := createTestAccountService()
	ctx := context.Background()

	id := f.register(ctx, "alice@example.com", true)

	newFirst := "Alicia"
	profile, err := f.service.UpdateDetails(ctx, id.String(), &usecase.UpdateDetailsInput{
		FirstName: &newFirst,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", profile.FirstName)

	// Untouched field keeps its value.
	assert.Equal(t, "Account", profile.LastName)
	assert.Equal(t, "alice@example.com", profile.Email)
}

func TestAccountService_UpdateDetails_UnknownAccount(t *testing.T) {
	f := createTestAccountService()

	name := "Nobody"
	_, err := f.service.UpdateDetails(context.Background(), "11111111-2222-3333-4444-555555555555", &usecase.UpdateDetailsInput{
		FirstName: &name,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
}
