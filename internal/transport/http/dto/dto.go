// Package dto holds the HTTP request shapes and their validation rules.
package dto

import (
	"github.com/go-playground/validator/v10"

	"github.com/fumble-dev/hire-me/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// StatusNotifyRequest is the internal service-to-service payload emitted by
// the applications service when a recruiter moves an application.
type StatusNotifyRequest struct {
	Email    string `json:"email" validate:"required,email"`
	JobTitle string `json:"jobTitle" validate:"required"`
}

// Validate runs the struct tags and converts the first failure into a
// domain validation error.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		switch fe.Tag() {
		case "required":
			return domain.ErrMissingField(fe.Field())
		default:
			return domain.ErrInvalidField(fe.Field(), fe.Tag())
		}
	}
	return domain.ErrInvalidJSON(err)
}
