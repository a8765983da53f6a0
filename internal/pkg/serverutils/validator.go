package serverutils

import (
	"strings"

	"ai-guidance-be/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks DTO struct tags and folds violations into the
// validation error family so the error handler returns a 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var violations validator.ValidationErrors
		if ok := asValidationErrors(err, &violations); ok && len(violations) > 0 {
			field := violations[0]
			return apperror.Validationf("field %s failed on %s", field.Field(), field.Tag())
		}
		return apperror.Validationf("%v", err)
	}
	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = v
	return true
}

// RequireNonEmpty rejects blank required strings that tags cannot catch
// (e.g. whitespace-only questions).
func RequireNonEmpty(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperror.Validationf("%s must not be empty", name)
	}
	return nil
}
