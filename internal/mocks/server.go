package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/ats-client/internal/model"
)

// UserStore is a mock of model.UserStore.
type UserStore struct {
	mock.Mock
}

func NewUserStore(t TestingT) *UserStore {
	m := &UserStore{}
	register(&m.Mock, t)
	return m
}

func (_m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	ret := _m.Called(ctx, email)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	ret := _m.Called(ctx, user)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) MarkVerified(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *UserStore) UpdateEmail(ctx context.Context, id uuid.UUID, email string) (model.User, error) {
	ret := _m.Called(ctx, id, email)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash []byte) error {
	ret := _m.Called(ctx, id, passwordHash)
	return ret.Error(0)
}

// ChallengeStore is a mock of model.ChallengeStore.
type ChallengeStore struct {
	mock.Mock
}

func NewChallengeStore(t TestingT) *ChallengeStore {
	m := &ChallengeStore{}
	register(&m.Mock, t)
	return m
}

func (_m *ChallengeStore) Create(ctx context.Context, challenge model.Challenge) error {
	ret := _m.Called(ctx, challenge)
	return ret.Error(0)
}

func (_m *ChallengeStore) Consume(ctx context.Context, kind model.ChallengeKind, token string, owner uuid.UUID, checkCode bool, codeHash string, maxAttempts int) (model.Challenge, error) {
	ret := _m.Called(ctx, kind, token, owner, checkCode, codeHash, maxAttempts)
	return ret.Get(0).(model.Challenge), ret.Error(1)
}

// Mailer is a mock of model.Mailer.
type Mailer struct {
	mock.Mock
}

func NewMailer(t TestingT) *Mailer {
	m := &Mailer{}
	register(&m.Mock, t)
	return m
}

func (_m *Mailer) SendVerification(ctx context.Context, to, name, link, code string) error {
	ret := _m.Called(ctx, to, name, link, code)
	return ret.Error(0)
}

func (_m *Mailer) SendCode(ctx context.Context, to string, kind model.ChallengeKind, code string) error {
	ret := _m.Called(ctx, to, kind, code)
	return ret.Error(0)
}

// TokenManager is a mock of model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func NewTokenManager(t TestingT) *TokenManager {
	m := &TokenManager{}
	register(&m.Mock, t)
	return m
}

func (_m *TokenManager) GenerateAccessToken(userID uuid.UUID) (string, error) {
	ret := _m.Called(userID)
	return ret.String(0), ret.Error(1)
}

func (_m *TokenManager) ParseAccessToken(token string) (uuid.UUID, error) {
	ret := _m.Called(token)
	return ret.Get(0).(uuid.UUID), ret.Error(1)
}
