package service

// Purpose scopes a token to exactly one use-case. A token minted for one
// purpose never verifies as another.
type Purpose string

const (
	// PurposeSession is a bearer session token; its subject is the account email.
	PurposeSession Purpose = "session"

	// PurposeEmailVerification gates the verified latch; its subject is the account id.
	PurposeEmailVerification Purpose = "email_verification"

	// PurposePasswordReset gates a credential overwrite; its subject is the account id.
	PurposePasswordReset Purpose = "password_reset"
)

// TokenService mints and verifies signed, expiring, purpose-scoped tokens.
// Tokens are stateless: nothing is persisted, expiry is embedded.
type TokenService interface {
	// Issue creates a compact signed token for the subject, with the TTL
	// configured for the purpose.
	Issue(subject string, purpose Purpose) (string, error)

	// Verify checks signature, structure, purpose and expiry, and returns
	// the embedded subject. Any failure surfaces as the domain's
	// invalid-token error.
	Verify(token string, purpose Purpose) (subject string, err error)
}
