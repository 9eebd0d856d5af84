// Package apierr defines the error taxonomy shared by the REST transport,
// the confirmation workflows and the reference verification service.
//
// Client side errors fall into three classes:
//
//   - ValidationError: detected locally, before any network call.
//   - TransportError: the server could not be reached or answered without a
//     usable message.
//   - ApplicationError: the server rejected the request with a message meant
//     for the user.
package apierr

import (
	"errors"
	"fmt"
)

// GenericMessage is shown when the server did not provide one.
const GenericMessage = "Something went wrong. Please try again."

// ValidationError reports input rejected before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// TransportError reports a failed exchange without a server message.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ApplicationError carries a human readable message from the server.
type ApplicationError struct {
	Status  int
	Message string
}

func (e *ApplicationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// UserMessage returns the best message to show for err: the server text
// for application errors, the reason for validation errors and fallback
// otherwise.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var appErr *ApplicationError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Reason
	}
	if fallback == "" {
		return GenericMessage
	}
	return fallback
}
