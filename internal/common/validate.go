package common

import (
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags on the provided payload and converts the first
// failure into a field-scoped AppError.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return &AppError{
			Code:       "VALIDATION_ERROR",
			Message:    strings.ToLower(first.Field()) + " failed validation on " + first.Tag(),
			HTTPStatus: http.StatusBadRequest,
			Err:        err,
			Details:    map[string]any{"field": strings.ToLower(first.Field()), "rule": first.Tag()},
		}
	}
	return NewAppError("VALIDATION_ERROR", "invalid payload", http.StatusBadRequest, err)
}
