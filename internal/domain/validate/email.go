// Package validate contains pure input validation rules. Nothing here
// touches state; the same input always yields the same result.
package validate

import (
	"regexp"
	"strings"

	domainerrors "identity/internal/domain/errors"
)

const (
	localPartMaxLen = 64
	domainMinLen    = 4
	domainMaxLen    = 255
)

// emailPattern is a conservative grammar applied after the structural
// checks. It intentionally rejects exotic-but-legal addresses (quoted
// locals, IP-literal domains) in favor of predictable account keys.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail validates a raw email address and returns its canonical
// form: surrounding whitespace stripped and the domain lower-cased. The
// canonical form is what the account store keys on, so NormalizeEmail is
// idempotent: feeding its output back in returns the same string.
func NormalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", domainerrors.ErrInvalidArgument.WithMessage("Email is required")
	}

	local, domain, ok := splitAddress(email)
	if !ok {
		return "", domainerrors.ErrInvalidArgument.WithMessage("Invalid email format")
	}

	if len(local) < 1 || len(local) > localPartMaxLen {
		return "", domainerrors.ErrInvalidArgument.WithMessage("Email local part must be between 1 and 64 characters")
	}
	if hasBadDots(local) {
		return "", domainerrors.ErrInvalidArgument.WithMessage("Email local part cannot start/end with or contain consecutive dots")
	}

	if len(domain) < domainMinLen || len(domain) > domainMaxLen {
		return "", domainerrors.ErrInvalidArgument.WithMessage("Email domain must be between 4 and 255 characters")
	}
	if !strings.Contains(domain, ".") || hasBadDots(domain) {
		return "", domainerrors.ErrInvalidArgument.WithMessage("Email domain must contain a dot and cannot start/end with or contain consecutive dots")
	}

	canonical := local + "@" + strings.ToLower(domain)
	if !emailPattern.MatchString(canonical) {
		return "", domainerrors.ErrInvalidArgument.WithMessage("Invalid email format")
	}

	return canonical, nil
}

// splitAddress splits on the single permitted "@". More or fewer than one
// is malformed.
func splitAddress(email string) (local, domain string, ok bool) {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "", "", false
	}

	return parts[0], parts[1], true
}

func hasBadDots(s string) bool {
	return strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") || strings.Contains(s, "..")
}
