// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"

	"identity/internal/delivery/http/response"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AccountHandler holds dependencies for account-related handlers.
type AccountHandler struct {
	uc     usecase.AccountUsecase
	logger *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(uc usecase.AccountUsecase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		uc:     uc,
		logger: logger,
	}
}

// Signup handles the registration request.
func (h *AccountHandler) Signup(c echo.Context) error {
	var input usecase.RegisterInput
	if err := c.Bind(&input); err != nil {
		return domainerrors.ErrInvalidArgument.WithMessage("Invalid signup input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Register(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, output)
}

// Login handles the authentication request.
func (h *AccountHandler) Login(c echo.Context) error {
	var input usecase.AuthenticateInput
	if err := c.Bind(&input); err != nil {
		return domainerrors.ErrInvalidArgument.WithMessage("Invalid login input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Authenticate(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, output)
}

// GetByEmail looks up an account profile by email query parameter.
func (h *AccountHandler) GetByEmail(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return domainerrors.ErrInvalidArgument.WithMessage("Email query parameter is required")
	}

	profile, err := h.uc.GetByEmail(c.Request().Context(), email)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, profile)
}

// GetByID looks up an account profile by path id.
func (h *AccountHandler) GetByID(c echo.Context) error {
	profile, err := h.uc.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, profile)
}

// UpdateDetails applies a partial profile update.
func (h *AccountHandler) UpdateDetails(c echo.Context) error {
	var input usecase.UpdateDetailsInput
	if err := c.Bind(&input); err != nil {
		return domainerrors.ErrInvalidArgument.WithMessage("Invalid update input")
	}

	if _, err := h.uc.UpdateDetails(c.Request().Context(), c.Param("id"), &input); err != nil {
		return errors.WithStack(err)
	}

	return response.OKMessage(c, "Account details updated successfully")
}

// Verify consumes an email-verification token from the query string.
func (h *AccountHandler) Verify(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return domainerrors.ErrInvalidArgument.WithMessage("Token query parameter is required")
	}

	if err := h.uc.VerifyEmail(c.Request().Context(), token); err != nil {
		return errors.WithStack(err)
	}

	return response.OKMessage(c, "Email verified successfully")
}

// emailRequest is the body shared by the resend and reset-request endpoints.
type emailRequest struct {
	Email string `json:"email" validate:"required"`
}

// ResendVerification re-sends the verification email.
func (h *AccountHandler) ResendVerification(c echo.Context) error {
	var input emailRequest
	if err := c.Bind(&input); err != nil {
		return domainerrors.ErrInvalidArgument.WithMessage("Invalid input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.ResendVerification(c.Request().Context(), input.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.OKMessage(c, "Verification email sent")
}

// SendResetEmail starts the password-reset flow.
func (h *AccountHandler) SendResetEmail(c echo.Context) error {
	var input emailRequest
	if err := c.Bind(&input); err != nil {
		return domainerrors.ErrInvalidArgument.WithMessage("Invalid input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.RequestPasswordReset(c.Request().Context(), input.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.OKMessage(c, "Password reset email sent")
}

// ResetPassword consumes a reset token and stores the new credential.
func (h *AccountHandler) ResetPassword(c echo.Context) error {
	var input usecase.ResetPasswordInput
	if err := c.Bind(&input); err != nil {
		return domainerrors.ErrInvalidArgument.WithMessage("Invalid input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.ResetPassword(c.Request().Context(), &input); err != nil {
		return errors.WithStack(err)
	}

	return response.OKMessage(c, "Password has been reset successfully")
}
