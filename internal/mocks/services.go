package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/ats-client/internal/model"
)

// AuthService is a mock of handler.AuthService.
type AuthService struct {
	mock.Mock
}

func NewAuthService(t TestingT) *AuthService {
	m := &AuthService{}
	register(&m.Mock, t)
	return m
}

func (_m *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	ret := _m.Called(ctx, name, email, password)
	return ret.String(0), ret.Error(1)
}

func (_m *AuthService) VerifyLink(ctx context.Context, token string) (string, error) {
	ret := _m.Called(ctx, token)
	return ret.String(0), ret.Error(1)
}

func (_m *AuthService) VerifyOTP(ctx context.Context, token, otp string) (string, error) {
	ret := _m.Called(ctx, token, otp)
	return ret.String(0), ret.Error(1)
}

func (_m *AuthService) Login(ctx context.Context, email, password string) (model.SessionGrant, error) {
	ret := _m.Called(ctx, email, password)
	return ret.Get(0).(model.SessionGrant), ret.Error(1)
}

// AccountService is a mock of handler.AccountService.
type AccountService struct {
	mock.Mock
}

func NewAccountService(t TestingT) *AccountService {
	m := &AccountService{}
	register(&m.Mock, t)
	return m
}

func (_m *AccountService) Profile(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	ret := _m.Called(ctx, userID)
	return ret.Get(0).(model.Profile), ret.Error(1)
}

func (_m *AccountService) RequestEmailChange(ctx context.Context, userID uuid.UUID, newEmail string) (string, error) {
	ret := _m.Called(ctx, userID, newEmail)
	return ret.String(0), ret.Error(1)
}

func (_m *AccountService) VerifyEmailChange(ctx context.Context, userID uuid.UUID, token, code string) (model.SessionGrant, error) {
	ret := _m.Called(ctx, userID, token, code)
	return ret.Get(0).(model.SessionGrant), ret.Error(1)
}

func (_m *AccountService) RequestPasswordSet(ctx context.Context, userID uuid.UUID) (string, error) {
	ret := _m.Called(ctx, userID)
	return ret.String(0), ret.Error(1)
}

func (_m *AccountService) VerifyPasswordSet(ctx context.Context, userID uuid.UUID, token, code, password string) (model.SessionGrant, error) {
	ret := _m.Called(ctx, userID, token, code, password)
	return ret.Get(0).(model.SessionGrant), ret.Error(1)
}
