package workflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtroode/ats-client/internal/apierr"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{email: "jane@example.com", valid: true},
		{email: "jane.doe+ats@mail.example.org", valid: true},
		{email: "", valid: false},
		{email: "jane", valid: false},
		{email: "jane@localhost", valid: false},
		{email: "Jane <jane@example.com>", valid: false},
		{email: "@example.com", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apierr.IsValidation(err))
		})
	}
}

func TestValidateCode(t *testing.T) {
	assert.NoError(t, ValidateCode("012345"))

	for _, code := range []string{"", "12345", "1234567", "12a456", " 12345", "１２３４５６"} {
		assert.True(t, apierr.IsValidation(ValidateCode(code)), code)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("correct horse"))
	assert.True(t, apierr.IsValidation(ValidatePassword("short")))
	assert.True(t, apierr.IsValidation(ValidatePassword(strings.Repeat("x", 73))))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Jane"))
	assert.True(t, apierr.IsValidation(ValidateName("   ")))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
}
