// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is the durable identity record. One row per registered email;
// the email is the unique login key and never changes after registration.
type Account struct {
	ID           uuid.UUID // Assigned at creation, immutable.
	Email        string    // Canonical form (validated, lower-cased domain), globally unique.
	PasswordHash string    // bcrypt hash of the credential, replaced wholesale on reset.
	FirstName    string
	LastName     string

	// Verified is a one-way latch: it starts false and flips to true at most
	// once, when an email-verification token is consumed. It never reverts.
	Verified bool

	// VerificationEmailSentAt and PasswordResetEmailSentAt are independent
	// rate-limit cursors. Each is stamped when its email is dispatched and
	// gates only its own flow.
	VerificationEmailSentAt  *time.Time
	PasswordResetEmailSentAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
