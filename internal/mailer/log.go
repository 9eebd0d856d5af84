package mailer

import (
	"context"

	"github.com/dtroode/ats-client/internal/logger"
	"github.com/dtroode/ats-client/internal/model"
)

// Log writes messages to the logger instead of sending them. It is used
// when no SMTP relay is configured.
type Log struct {
	logger *logger.Logger
}

var _ model.Mailer = (*Log)(nil)

func NewLog(logger *logger.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SendVerification(_ context.Context, to, name, link, code string) error {
	l.logger.Info("Mailer: verification", "to", to, "name", name, "link", link, "code", code)
	return nil
}

func (l *Log) SendCode(_ context.Context, to string, kind model.ChallengeKind, code string) error {
	l.logger.Info("Mailer: code", "to", to, "kind", string(kind), "code", code)
	return nil
}
