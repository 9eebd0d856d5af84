package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenManager generates and validates session tokens.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID) (string, error)
	ParseAccessToken(token string) (uuid.UUID, error)
}

// TokenSource provides the bearer credential for outgoing requests.
type TokenSource interface {
	AuthToken() string
}

// ExpiryReader extracts the expiry of a token without verifying it.
type ExpiryReader interface {
	ExpiresAt(token string) (time.Time, bool)
}
