package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultChallengeTTL is the lifetime of a pending challenge.
const DefaultChallengeTTL = 15 * time.Minute

// DefaultChallengeMaxAttempts bounds wrong-code submissions per challenge.
const DefaultChallengeMaxAttempts = 5

// ChallengeKind enumerates the sensitive operations confirmed by a challenge.
type ChallengeKind string

const (
	// ChallengeRegistration confirms a newly registered email address.
	ChallengeRegistration ChallengeKind = "registration"
	// ChallengeEmailChange confirms a change of the account email.
	ChallengeEmailChange ChallengeKind = "email_change"
	// ChallengePasswordSet confirms setting a new password.
	ChallengePasswordSet ChallengeKind = "password_set"
)

// Challenge is a pending, single-use confirmation bound to an opaque token
// and a one-time code.
type Challenge struct {
	Token     string
	Kind      ChallengeKind
	UserID    uuid.UUID
	Value     string
	CodeHash  string
	Attempts  int
	Consumed  bool
	ExpiresAt time.Time
}

// ChallengeStore persists pending challenges.
//
// Consume marks the challenge used. A non-nil owner must match the
// challenge's user before anything else is checked; a foreign challenge is
// left untouched. When checkCode is true the stored code hash must equal
// codeHash; a mismatch counts an attempt and keeps the challenge alive
// until maxAttempts is reached.
type ChallengeStore interface {
	Create(ctx context.Context, challenge Challenge) error
	Consume(ctx context.Context, kind ChallengeKind, token string, owner uuid.UUID, checkCode bool, codeHash string, maxAttempts int) (Challenge, error)
}
