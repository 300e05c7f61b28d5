package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// EmailRegex is the mailing-list email check, stricter than RFC 5322
// about the top-level domain
var EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance with the "mailbox" tag registered
func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return ValidateEmail(fl.Field().String())
	})
	return &Validator{validate: v}
}

// ValidateStruct validates a struct using struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationErrors converts validation errors to a user-friendly format
func FormatValidationErrors(err error) map[string]string {
	out := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return out
	}

	for _, e := range validationErrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			out[field] = fmt.Sprintf("%s is required", e.Field())
		case "email", "mailbox":
			out[field] = "Invalid email format"
		case "min":
			out[field] = fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
		case "max":
			out[field] = fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
		case "oneof":
			out[field] = fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
		default:
			out[field] = fmt.Sprintf("%s is invalid", e.Field())
		}
	}
	return out
}

// ValidateEmail checks if an email is valid
func ValidateEmail(email string) bool {
	if len(email) < 3 || len(email) > 254 {
		return false
	}
	return EmailRegex.MatchString(email)
}

// NormalizeEmail trims and lower-cases an address so the unique index
// sees one spelling per mailbox
func NormalizeEmail(email string) string {
	return strings.ToLower(SanitizeString(email))
}

// SanitizeString removes potentially dangerous characters
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}
