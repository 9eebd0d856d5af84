// Package mailer delivers challenge codes and verification links.
package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/dtroode/ats-client/internal/model"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTP sends plain text mail through an SMTP relay.
type SMTP struct {
	from   string
	dialer dialer
}

var _ model.Mailer = (*SMTP)(nil)

// NewSMTP creates a mailer for the given relay.
func NewSMTP(host string, port int, username, password, from string) *SMTP {
	return &SMTP{
		from:   from,
		dialer: gomail.NewDialer(host, port, username, password),
	}
}

// SendVerification sends the registration mail carrying both the link and
// the code. Either one confirms the address.
func (s *SMTP) SendVerification(ctx context.Context, to, name, link, code string) error {
	body := fmt.Sprintf("Hi %s,\n\nConfirm your email address by opening this link:\n\n%s\n\n"+
		"Or enter this code in the app: %s\n\nBoth expire in 15 minutes.", name, link, code)
	return s.send(ctx, to, "Verify your email address", body)
}

// SendCode sends a one-time code for a credential change.
func (s *SMTP) SendCode(ctx context.Context, to string, kind model.ChallengeKind, code string) error {
	return s.send(ctx, to, subject(kind), codeBody(kind, code))
}

func (s *SMTP) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

func subject(kind model.ChallengeKind) string {
	switch kind {
	case model.ChallengeEmailChange:
		return "Confirm your new email address"
	case model.ChallengePasswordSet:
		return "Confirm your new password"
	default:
		return "Verification code"
	}
}

func codeBody(kind model.ChallengeKind, code string) string {
	switch kind {
	case model.ChallengeEmailChange:
		return fmt.Sprintf("Your email change code is: %s\n\nThis code will expire in 15 minutes.", code)
	case model.ChallengePasswordSet:
		return fmt.Sprintf("Your password change code is: %s\n\nThis code will expire in 15 minutes.\n\n"+
			"If you did not request this change, please ignore this email.", code)
	default:
		return fmt.Sprintf("Your verification code is: %s", code)
	}
}
