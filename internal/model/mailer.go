package model

import "context"

// Mailer delivers challenge codes and links out of band.
type Mailer interface {
	SendVerification(ctx context.Context, to, name, link, code string) error
	SendCode(ctx context.Context, to string, kind ChallengeKind, code string) error
}
