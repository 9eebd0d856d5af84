package workflow

import (
	"net/mail"
	"strings"

	"github.com/dtroode/ats-client/internal/apierr"
)

const (
	codeLength        = 6
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
)

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail accepts a bare address such as "user@example.com".
// Display names and angle brackets are rejected.
func ValidateEmail(email string) error {
	if email == "" {
		return apierr.NewValidationError("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return apierr.NewValidationError("email", "enter a valid email address")
	}
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || !strings.Contains(email[at+1:], ".") {
		return apierr.NewValidationError("email", "enter a valid email address")
	}
	return nil
}

// ValidateCode accepts exactly six ASCII digits.
func ValidateCode(code string) error {
	if len(code) != codeLength {
		return apierr.NewValidationError("code", "code must be 6 digits")
	}
	for _, ch := range code {
		if ch < '0' || ch > '9' {
			return apierr.NewValidationError("code", "code must be 6 digits")
		}
	}
	return nil
}

// ValidatePassword enforces the password length policy.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apierr.NewValidationError("password", "password must be at least 8 characters")
	}
	if len(password) > maxPasswordLength {
		return apierr.NewValidationError("password", "password must be at most 72 bytes")
	}
	return nil
}

// ValidateName requires a non-blank display name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apierr.NewValidationError("name", "name is required")
	}
	return nil
}
