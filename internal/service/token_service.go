package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/ats-client/internal/logger"
	"github.com/dtroode/ats-client/internal/model"
)

// TokenService issues session tokens and resolves them back to users.
type TokenService struct {
	manager model.TokenManager
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, logger: logger}
}

// Issue returns a session grant for user: a fresh token and the profile
// it belongs to.
func (s *TokenService) Issue(user model.User) (model.SessionGrant, error) {
	token, err := s.manager.GenerateAccessToken(user.ID)
	if err != nil {
		s.logger.Error("Token service: failed to issue token",
			"user_id", user.ID,
			"error", err.Error())
		return model.SessionGrant{}, fmt.Errorf("issue access: %w", err)
	}
	return model.SessionGrant{Token: token, User: user.Profile()}, nil
}

// GetUserID validates token and returns the user it was issued to.
func (s *TokenService) GetUserID(_ context.Context, token string) (uuid.UUID, error) {
	return s.manager.ParseAccessToken(token)
}
