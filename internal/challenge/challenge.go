// Package challenge issues and checks the secrets behind a pending
// confirmation: an opaque URL-safe token and a 6-digit one-time code.
package challenge

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/ats-client/internal/model"
)

const tokenBytes = 32

// Issued is a freshly generated challenge together with its plaintext code.
// The code is delivered to the user and never stored.
type Issued struct {
	Challenge model.Challenge
	Code      string
}

// New generates a challenge of kind for userID carrying value.
func New(kind model.ChallengeKind, userID uuid.UUID, value string, ttl time.Duration, now time.Time) (Issued, error) {
	token, err := GenerateToken()
	if err != nil {
		return Issued{}, fmt.Errorf("failed to generate token: %w", err)
	}
	code, err := GenerateCode()
	if err != nil {
		return Issued{}, fmt.Errorf("failed to generate code: %w", err)
	}
	return Issued{
		Challenge: model.Challenge{
			Token:     token,
			Kind:      kind,
			UserID:    userID,
			Value:     value,
			CodeHash:  HashCode(token, code),
			ExpiresAt: now.Add(ttl),
		},
		Code: code,
	}, nil
}

// GenerateCode returns a uniformly random 6-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateToken returns 32 random bytes encoded as unpadded base64url.
func GenerateToken() (string, error) {
	var b [tokenBytes]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

// HashCode binds code to its challenge token.
func HashCode(token, code string) string {
	sum := sha256.Sum256([]byte(token + ":" + code))
	return hex.EncodeToString(sum[:])
}
