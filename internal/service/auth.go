package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/ats-client/internal/apierr"
	"github.com/dtroode/ats-client/internal/challenge"
	"github.com/dtroode/ats-client/internal/logger"
	"github.com/dtroode/ats-client/internal/model"
	"github.com/dtroode/ats-client/internal/workflow"
)

const (
	MessageRegistered      = "Registration successful. Please check your email to verify your account."
	MessageEmailVerified   = "Email verified successfully"
	MessageAlreadyVerified = "Email already verified"
)

// ChallengeConfig bounds the lifetime and retries of issued challenges.
type ChallengeConfig struct {
	TTL         time.Duration
	MaxAttempts int
}

func (c ChallengeConfig) withDefaults() ChallengeConfig {
	if c.TTL <= 0 {
		c.TTL = model.DefaultChallengeTTL
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = model.DefaultChallengeMaxAttempts
	}
	return c
}

type Auth struct {
	userStore      model.UserStore
	challengeStore model.ChallengeStore
	mailer         model.Mailer
	tokenService   *TokenService
	publicURL      string
	challenges     ChallengeConfig
	logger         *logger.Logger
	now            func() time.Time
}

func NewAuth(
	userStore model.UserStore,
	challengeStore model.ChallengeStore,
	mailer model.Mailer,
	tokenService *TokenService,
	publicURL string,
	challenges ChallengeConfig,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:      userStore,
		challengeStore: challengeStore,
		mailer:         mailer,
		tokenService:   tokenService,
		publicURL:      strings.TrimRight(publicURL, "/"),
		challenges:     challenges.withDefaults(),
		logger:         logger,
		now:            time.Now,
	}
}

// Register creates an unverified account and mails a verification link and
// code for it. Registering again before verification replaces the password
// and issues a new challenge.
func (a *Auth) Register(ctx context.Context, name, email, password string) (string, error) {
	email = workflow.NormalizeEmail(email)
	name = strings.TrimSpace(name)
	a.logger.Debug("Auth service: starting user registration", "email", email)

	if err := workflow.ValidateName(name); err != nil {
		return "", badRequest(err)
	}
	if err := workflow.ValidateEmail(email); err != nil {
		return "", badRequest(err)
	}
	if err := workflow.ValidatePassword(password); err != nil {
		return "", badRequest(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	switch {
	case err == nil && user.Verified:
		a.logger.Info("Auth service: user already exists", "email", email)
		return "", apierr.NewErrEmailIsTaken(email)
	case err == nil:
		if err := a.userStore.UpdatePassword(ctx, user.ID, hash); err != nil {
			return "", fmt.Errorf("failed to update password: %w", err)
		}
	case errors.Is(err, model.ErrNotFound):
		now := a.now()
		user, err = a.userStore.Create(ctx, model.User{
			ID:           uuid.New(),
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if errors.Is(err, model.ErrAlreadyExists) {
			return "", apierr.NewErrEmailIsTaken(email)
		}
		if err != nil {
			a.logger.Error("Auth service: failed to create user",
				"email", email,
				"error", err.Error())
			return "", fmt.Errorf("failed to create user: %w", err)
		}
	default:
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return "", fmt.Errorf("failed to get user by email: %w", err)
	}

	issued, err := challenge.New(model.ChallengeRegistration, user.ID, email, a.challenges.TTL, a.now())
	if err != nil {
		return "", err
	}
	if err := a.challengeStore.Create(ctx, issued.Challenge); err != nil {
		return "", fmt.Errorf("failed to store challenge: %w", err)
	}

	link := a.publicURL + "/api/auth/verify-email?token=" + url.QueryEscape(issued.Challenge.Token)
	if err := a.mailer.SendVerification(ctx, email, user.Name, link, issued.Code); err != nil {
		a.logger.Error("Auth service: failed to send verification",
			"email", email,
			"error", err.Error())
		return "", fmt.Errorf("failed to send verification: %w", err)
	}

	a.logger.Info("Auth service: registration started successfully", "email", email, "user_id", user.ID)
	return issued.Challenge.Token, nil
}

// VerifyLink confirms a registration through the emailed link.
func (a *Auth) VerifyLink(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apierr.NewErrInvalidToken()
	}
	return a.verify(ctx, token, false, "")
}

// VerifyOTP confirms a registration through the emailed code. Either
// channel consumes the same challenge.
func (a *Auth) VerifyOTP(ctx context.Context, token, otp string) (string, error) {
	if token == "" {
		return "", apierr.NewErrInvalidToken()
	}
	if err := workflow.ValidateCode(otp); err != nil {
		return "", apierr.NewErrInvalidOTP()
	}
	return a.verify(ctx, token, true, challenge.HashCode(token, otp))
}

func (a *Auth) verify(ctx context.Context, token string, checkCode bool, codeHash string) (string, error) {
	c, err := a.challengeStore.Consume(ctx, model.ChallengeRegistration, token, uuid.Nil, checkCode, codeHash, a.challenges.MaxAttempts)
	if errors.Is(err, model.ErrChallengeConsumed) {
		return MessageAlreadyVerified, nil
	}
	if err != nil {
		a.logger.Info("Auth service: registration challenge rejected", "error", err.Error())
		return "", consumeError(err)
	}

	if err := a.userStore.MarkVerified(ctx, c.UserID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", apierr.NewErrUserNotFound()
		}
		return "", fmt.Errorf("failed to mark user verified: %w", err)
	}

	a.logger.Info("Auth service: email verified", "user_id", c.UserID)
	return MessageEmailVerified, nil
}

// Login checks credentials of a verified account and issues a session.
func (a *Auth) Login(ctx context.Context, email, password string) (model.SessionGrant, error) {
	email = workflow.NormalizeEmail(email)

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.SessionGrant{}, apierr.NewErrInvalidCredentials()
	}
	if err != nil {
		return model.SessionGrant{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		a.logger.Info("Auth service: password mismatch", "user_id", user.ID)
		return model.SessionGrant{}, apierr.NewErrInvalidCredentials()
	}
	if !user.Verified {
		return model.SessionGrant{}, apierr.NewErrEmailNotVerified()
	}

	return a.tokenService.Issue(user)
}
