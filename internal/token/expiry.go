package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expiry reads the exp claim of a JWT without verifying its signature.
// The client uses it only to drop sessions that are certainly stale; the
// server remains the authority on validity.
type Expiry struct {
	parser *jwt.Parser
}

// NewExpiry creates an Expiry reader.
func NewExpiry() *Expiry {
	return &Expiry{parser: jwt.NewParser()}
}

// ExpiresAt returns the expiry of token. ok is false for tokens that are
// not JWTs or carry no exp claim.
func (e *Expiry) ExpiresAt(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := e.parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
