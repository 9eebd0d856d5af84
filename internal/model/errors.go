package model

import "errors"

var (
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrChallengeConsumed is returned when a challenge was already used.
	ErrChallengeConsumed = errors.New("challenge already consumed")
	// ErrCodeMismatch is returned when a one-time code does not match.
	ErrCodeMismatch = errors.New("code mismatch")
	// ErrAttemptsExceeded is returned when a challenge ran out of attempts.
	ErrAttemptsExceeded = errors.New("challenge attempts exceeded")
	// ErrChallengeOwner is returned when a challenge belongs to another user.
	ErrChallengeOwner = errors.New("challenge belongs to another user")
)

// ErrAlreadyExists is returned when a unique constraint is violated.
var ErrAlreadyExists = errors.New("already exists")
