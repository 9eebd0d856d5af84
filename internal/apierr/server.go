package apierr

import (
	"fmt"
	"net/http"
)

// APIError is an error that is safe to render to API clients.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func NewErrBadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}

func NewErrEmailIsTaken(email string) *APIError {
	return &APIError{Status: http.StatusConflict, Message: fmt.Sprintf("email %s is already taken", email)}
}

func NewErrInvalidOTP() *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: "Invalid OTP"}
}

func NewErrInvalidToken() *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: "Invalid or expired token"}
}

func NewErrTooManyAttempts() *APIError {
	return &APIError{Status: http.StatusTooManyRequests, Message: "Too many invalid attempts, request a new code"}
}

func NewErrInvalidCredentials() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: "Invalid email or password"}
}

func NewErrEmailNotVerified() *APIError {
	return &APIError{Status: http.StatusForbidden, Message: "Email is not verified"}
}

func NewErrMissingAuthorizationToken() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: "missing authorization token"}
}

func NewErrInvalidAuthorizationToken() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: "invalid authorization token"}
}

func NewErrUserNotFound() *APIError {
	return &APIError{Status: http.StatusNotFound, Message: "user not found"}
}

func NewErrInternalServerError(err error) *APIError {
	return &APIError{Status: http.StatusInternalServerError, Message: "internal server error", Err: err}
}
