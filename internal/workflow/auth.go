package workflow

import (
	"context"

	"github.com/dtroode/ats-client/internal/logger"
	"github.com/dtroode/ats-client/internal/model"
)

// LoginAPI exchanges credentials for a session grant.
type LoginAPI interface {
	Login(ctx context.Context, email, password string) (model.SessionGrant, error)
}

// Auth creates and destroys the session.
type Auth struct {
	api      LoginAPI
	sessions SessionManager
	logger   *logger.Logger
}

// NewAuth creates an Auth.
func NewAuth(api LoginAPI, sessions SessionManager, logger *logger.Logger) *Auth {
	return &Auth{api: api, sessions: sessions, logger: logger}
}

// Login validates the input, authenticates and replaces the session with
// the granted one.
func (a *Auth) Login(ctx context.Context, email, password string) (model.Session, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return model.Session{}, err
	}
	if password == "" {
		return model.Session{}, ValidatePassword(password)
	}

	grant, err := a.api.Login(ctx, email, password)
	if err != nil {
		a.logger.Info("Auth: login failed",
			"email", email,
			"error", err.Error())
		return model.Session{}, err
	}

	session := grant.Session()
	if err := a.sessions.Replace(ctx, session); err != nil {
		a.logger.Error("Auth: failed to store session",
			"email", email,
			"error", err.Error())
		return model.Session{}, err
	}

	a.logger.Info("Auth: logged in",
		"user_id", session.UserID)
	return session, nil
}

// Logout clears the session.
func (a *Auth) Logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		a.logger.Error("Auth: failed to clear session",
			"error", err.Error())
		return err
	}
	a.logger.Info("Auth: logged out")
	return nil
}
