// Package validator adapts go-playground/validator to Echo's Validator
// interface.
package validator

import (
	domainerrors "identity/internal/domain/errors"
	"identity/internal/errors"

	"github.com/go-playground/validator/v10"
)

type echoValidator struct {
	validate *validator.Validate
}

// New creates the validator used for request DTOs.
func New() *echoValidator {
	return &echoValidator{validate: validator.New()}
}

// Validate checks the struct tags and surfaces the first failure as the
// domain's invalid-argument error, naming the offending field.
func (v *echoValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return domainerrors.ErrInvalidArgument.WithMessage(fieldErrs[0].Field() + " is required")
	}

	return domainerrors.ErrInvalidArgument
}
