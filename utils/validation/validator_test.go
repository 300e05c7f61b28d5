package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactForm struct {
	Name    string `validate:"required,min=2,max=100"`
	Email   string `validate:"required,mailbox"`
	Message string `validate:"required,min=10"`
}

func TestValidateStructReportsFriendlyErrors(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(contactForm{Name: "A", Email: "not-an-email", Message: ""})
	require.Error(t, err)

	got := FormatValidationErrors(err)
	assert.Equal(t, "Name must be at least 2 characters", got["name"])
	assert.Equal(t, "Invalid email format", got["email"])
	assert.Equal(t, "Message is required", got["message"])

	assert.NoError(t, v.ValidateStruct(contactForm{Name: "Asha", Email: "asha@example.com", Message: "Where are the 2023 papers?"}))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("student@rgpv.ac.in"))
	assert.False(t, ValidateEmail("student@localhost"))
	assert.False(t, ValidateEmail("a@"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "student@example.com", NormalizeEmail("  Student@Example.COM\x00 "))
}
