package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/ats-client/internal/apierr"
	"github.com/dtroode/ats-client/internal/challenge"
	"github.com/dtroode/ats-client/internal/logger"
	"github.com/dtroode/ats-client/internal/model"
	"github.com/dtroode/ats-client/internal/workflow"
)

// Account confirms sensitive changes of an authenticated account with a
// one-time code sent by email. Every successful change re-issues the
// session token.
type Account struct {
	userStore      model.UserStore
	challengeStore model.ChallengeStore
	mailer         model.Mailer
	tokenService   *TokenService
	challenges     ChallengeConfig
	logger         *logger.Logger
	now            func() time.Time
}

func NewAccount(
	userStore model.UserStore,
	challengeStore model.ChallengeStore,
	mailer model.Mailer,
	tokenService *TokenService,
	challenges ChallengeConfig,
	logger *logger.Logger,
) *Account {
	return &Account{
		userStore:      userStore,
		challengeStore: challengeStore,
		mailer:         mailer,
		tokenService:   tokenService,
		challenges:     challenges.withDefaults(),
		logger:         logger,
		now:            time.Now,
	}
}

func (s *Account) user(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, apierr.NewErrUserNotFound()
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// Profile returns the public view of the account.
func (s *Account) Profile(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}
	return user.Profile(), nil
}

// RequestEmailChange mails a code to newEmail and returns the challenge
// token that must accompany it.
func (s *Account) RequestEmailChange(ctx context.Context, userID uuid.UUID, newEmail string) (string, error) {
	newEmail = workflow.NormalizeEmail(newEmail)
	if err := workflow.ValidateEmail(newEmail); err != nil {
		return "", badRequest(err)
	}

	user, err := s.user(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.Email == newEmail {
		return "", apierr.NewErrBadRequest("New email must be different from the current one")
	}

	other, err := s.userStore.GetByEmail(ctx, newEmail)
	if err == nil && other.ID != user.ID {
		return "", apierr.NewErrEmailIsTaken(newEmail)
	}
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return "", fmt.Errorf("failed to get user by email: %w", err)
	}

	return s.issue(ctx, model.ChallengeEmailChange, user.ID, newEmail, newEmail)
}

// VerifyEmailChange checks the code, switches the account email and
// returns a fresh session.
func (s *Account) VerifyEmailChange(ctx context.Context, userID uuid.UUID, token, code string) (model.SessionGrant, error) {
	c, err := s.consume(ctx, model.ChallengeEmailChange, userID, token, code)
	if err != nil {
		return model.SessionGrant{}, err
	}

	user, err := s.userStore.UpdateEmail(ctx, userID, c.Value)
	if errors.Is(err, model.ErrAlreadyExists) {
		return model.SessionGrant{}, apierr.NewErrEmailIsTaken(c.Value)
	}
	if errors.Is(err, model.ErrNotFound) {
		return model.SessionGrant{}, apierr.NewErrUserNotFound()
	}
	if err != nil {
		return model.SessionGrant{}, fmt.Errorf("failed to update email: %w", err)
	}

	s.logger.Info("Account service: email changed", "user_id", userID)
	return s.tokenService.Issue(user)
}

// RequestPasswordSet mails a code to the account email.
func (s *Account) RequestPasswordSet(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.issue(ctx, model.ChallengePasswordSet, user.ID, "", user.Email)
}

// VerifyPasswordSet checks the code, stores the new password and returns
// a fresh session. The password is validated before the code so a weak
// password does not cost an attempt.
func (s *Account) VerifyPasswordSet(ctx context.Context, userID uuid.UUID, token, code, password string) (model.SessionGrant, error) {
	if err := workflow.ValidatePassword(password); err != nil {
		return model.SessionGrant{}, badRequest(err)
	}

	if _, err := s.consume(ctx, model.ChallengePasswordSet, userID, token, code); err != nil {
		return model.SessionGrant{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.SessionGrant{}, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userStore.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.SessionGrant{}, apierr.NewErrUserNotFound()
		}
		return model.SessionGrant{}, fmt.Errorf("failed to update password: %w", err)
	}

	user, err := s.user(ctx, userID)
	if err != nil {
		return model.SessionGrant{}, err
	}

	s.logger.Info("Account service: password set", "user_id", userID)
	return s.tokenService.Issue(user)
}

func (s *Account) issue(ctx context.Context, kind model.ChallengeKind, userID uuid.UUID, value, to string) (string, error) {
	issued, err := challenge.New(kind, userID, value, s.challenges.TTL, s.now())
	if err != nil {
		return "", err
	}
	if err := s.challengeStore.Create(ctx, issued.Challenge); err != nil {
		return "", fmt.Errorf("failed to store challenge: %w", err)
	}
	if err := s.mailer.SendCode(ctx, to, kind, issued.Code); err != nil {
		s.logger.Error("Account service: failed to send code",
			"kind", string(kind),
			"user_id", userID,
			"error", err.Error())
		return "", fmt.Errorf("failed to send code: %w", err)
	}

	s.logger.Info("Account service: challenge issued", "kind", string(kind), "user_id", userID)
	return issued.Challenge.Token, nil
}

func (s *Account) consume(ctx context.Context, kind model.ChallengeKind, userID uuid.UUID, token, code string) (model.Challenge, error) {
	if token == "" {
		return model.Challenge{}, apierr.NewErrInvalidToken()
	}
	if err := workflow.ValidateCode(code); err != nil {
		return model.Challenge{}, apierr.NewErrInvalidOTP()
	}

	c, err := s.challengeStore.Consume(ctx, kind, token, userID, true, challenge.HashCode(token, code), s.challenges.MaxAttempts)
	if errors.Is(err, model.ErrChallengeConsumed) {
		return model.Challenge{}, apierr.NewErrInvalidToken()
	}
	if errors.Is(err, model.ErrChallengeOwner) {
		s.logger.Warn("Account service: challenge belongs to another user", "user_id", userID)
		return model.Challenge{}, apierr.NewErrInvalidToken()
	}
	if err != nil {
		s.logger.Info("Account service: challenge rejected",
			"kind", string(kind),
			"user_id", userID,
			"error", err.Error())
		return model.Challenge{}, consumeError(err)
	}
	return c, nil
}
