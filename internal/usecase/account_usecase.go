// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// AuthenticateInput defines the data required for an account to log in.
type AuthenticateInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateDetailsInput carries a partial profile update. Nil fields are left
// untouched; email and password are never updatable through this path.
type UpdateDetailsInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// ResetPasswordInput carries a password-reset token together with the
// replacement credential.
type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// --- Output DTOs ---

// RegisterOutput confirms a completed registration.
type RegisterOutput struct {
	Message string `json:"message"`
}

// AuthenticateOutput returns the session token after a successful login.
type AuthenticateOutput struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// AccountProfile is the read model exposed to the delivery layer. It never
// carries the password hash or the rate-limit cursors.
type AccountProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Verified  bool   `json:"verified"`
}

// AccountUsecase defines the interface for account lifecycle operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AccountUsecase interface {
	// Register creates an unverified account and dispatches the first
	// verification email.
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Authenticate checks credentials and the verified latch, then mints a
	// session token.
	Authenticate(ctx context.Context, input *AuthenticateInput) (*AuthenticateOutput, error)

	// GetByEmail looks up a profile by canonical email.
	GetByEmail(ctx context.Context, email string) (*AccountProfile, error)

	// GetByID looks up a profile by account id.
	GetByID(ctx context.Context, id string) (*AccountProfile, error)

	// UpdateDetails applies a partial name update to an existing account.
	UpdateDetails(ctx context.Context, id string, input *UpdateDetailsInput) (*AccountProfile, error)

	// VerifyEmail consumes a verification token and flips the verified
	// latch. Verifying an already-verified account succeeds silently.
	VerifyEmail(ctx context.Context, token string) error

	// ResendVerification re-sends the verification email, subject to the
	// per-account cooldown.
	ResendVerification(ctx context.Context, email string) error

	// RequestPasswordReset sends a reset email, subject to the per-account
	// cooldown. The account must exist; unknown emails surface as not found.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes a reset token and replaces the credential.
	ResetPassword(ctx context.Context, input *ResetPasswordInput) error
}
