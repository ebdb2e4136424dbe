package service

import (
	"context"

	"identity/internal/domain/entity"
)

// MailGateway delivers account emails. Link construction (front-end origin,
// token encoding) is the gateway's concern; callers hand over the account
// and the already-minted token.
type MailGateway interface {
	// SendVerificationEmail delivers the email-verification link.
	SendVerificationEmail(ctx context.Context, account *entity.Account, token string) error

	// SendPasswordResetEmail delivers the password-reset link.
	SendPasswordResetEmail(ctx context.Context, account *entity.Account, token string) error
}
