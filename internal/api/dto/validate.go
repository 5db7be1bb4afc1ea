package dto

import (
	"errors"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/fidelipromo/loyalty-service/pkg/util/errorutil"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and converts violations into a validation
// DomainError with per-field details.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]any, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		return apperrors.NewValidationError("invalid payload", details)
	}
	return err
}
