// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"identity/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrAccountNotFound is the domain-specific error returned when no account
// matches the given id or email.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository defines the standard operations for account persistence.
// The application layer depends on this interface, never on the concrete
// database implementation.
type AccountRepository interface {
	// FindByID retrieves a single account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByEmail retrieves a single account by its canonical email.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// ExistsByEmail reports whether an account with the canonical email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create persists a new account. Email uniqueness is enforced at write
	// time; a duplicate surfaces as a domain error.
	Create(ctx context.Context, account *entity.Account) error

	// Update writes the whole account record back to storage.
	Update(ctx context.Context, account *entity.Account) error
}
