// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"identity/config"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/service"
)

// minSecretLen is the minimum HS256 secret length in bytes. A shorter key
// undercuts the signature strength, so construction fails instead.
const minSecretLen = 32

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// One symmetric secret signs all tokens; the purpose claim keeps them from
// crossing flows.
type jwtService struct {
	secret     []byte
	sessionTTL time.Duration // session tokens
	emailTTL   time.Duration // verification and reset tokens

	// now is replaceable in tests.
	now func() time.Time
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg == nil || cfg.Auth == nil {
		return nil, errors.New("auth configuration must be provided")
	}
	if len(cfg.SecretKey.Token) < minSecretLen {
		return nil, errors.Errorf("token secret must be at least %d bytes", minSecretLen)
	}

	return &jwtService{
		secret:     []byte(cfg.SecretKey.Token),
		sessionTTL: cfg.Auth.SessionTokenTTL,
		emailTTL:   cfg.Auth.EmailTokenTTL,
		now:        time.Now,
	}, nil
}

// Issue creates a compact signed token for the subject, with the TTL
// configured for the purpose.
func (s *jwtService) Issue(subject string, purpose service.Purpose) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":     subject,
		"iat":     now.Unix(),
		"exp":     now.Add(s.ttl(purpose)).Unix(),
		"purpose": string(purpose),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Verify checks signature, structure, purpose and expiry, and returns the
// embedded subject. Every failure mode collapses into the domain's
// invalid-token error so callers cannot leak why a token was rejected.
func (s *jwtService) Verify(tokenString string, purpose service.Purpose) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return "", domainerrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domainerrors.ErrInvalidToken
	}

	if claimed, _ := claims["purpose"].(string); claimed != string(purpose) {
		return "", domainerrors.ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", domainerrors.ErrInvalidToken
	}

	return subject, nil
}

func (s *jwtService) ttl(purpose service.Purpose) time.Duration {
	if purpose == service.PurposeSession {
		return s.sessionTTL
	}

	return s.emailTTL
}
