package middleware

import (
	"strings"

	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// ContextKeySessionEmail is where Authenticate stores the session subject.
const ContextKeySessionEmail = "sessionEmail"

// SessionMiddleware validates bearer session tokens on protected routes.
type SessionMiddleware struct {
	tokenSvc service.TokenService
}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware(tokenSvc service.TokenService) *SessionMiddleware {
	return &SessionMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the Authorization header and stores the session's
// account email on the context. Only session-purpose tokens pass; a
// verification or reset token in the header is rejected like any other
// invalid token.
func (m *SessionMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return domainerrors.ErrInvalidToken.WithMessage("Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return domainerrors.ErrInvalidToken.WithMessage("Invalid token format - must be a Bearer token")
		}

		email, err := m.tokenSvc.Verify(tokenString, service.PurposeSession)
		if err != nil {
			return err
		}

		c.Set(ContextKeySessionEmail, email)

		return next(c)
	}
}
