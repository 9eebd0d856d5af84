package service

import (
	"errors"

	"github.com/dtroode/ats-client/internal/apierr"
	"github.com/dtroode/ats-client/internal/model"
)

// badRequest turns a validation failure into a 400 carrying its reason.
func badRequest(err error) error {
	var v *apierr.ValidationError
	if errors.As(err, &v) {
		return apierr.NewErrBadRequest(v.Reason)
	}
	return err
}

// consumeError maps challenge store failures to API errors. Consumed
// challenges are left to the caller.
func consumeError(err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return apierr.NewErrInvalidToken()
	case errors.Is(err, model.ErrCodeMismatch):
		return apierr.NewErrInvalidOTP()
	case errors.Is(err, model.ErrAttemptsExceeded):
		return apierr.NewErrTooManyAttempts()
	default:
		return apierr.NewErrInternalServerError(err)
	}
}
