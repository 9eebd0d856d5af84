package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/ats-client/internal/model"
)

// AccountAPI is a mock of workflow.AccountAPI.
type AccountAPI struct {
	mock.Mock
}

func NewAccountAPI(t TestingT) *AccountAPI {
	m := &AccountAPI{}
	register(&m.Mock, t)
	return m
}

func (_m *AccountAPI) RequestEmailChange(ctx context.Context, newEmail string) (string, error) {
	ret := _m.Called(ctx, newEmail)
	return ret.String(0), ret.Error(1)
}

func (_m *AccountAPI) VerifyEmailChange(ctx context.Context, token, code string) (model.SessionGrant, error) {
	ret := _m.Called(ctx, token, code)
	return ret.Get(0).(model.SessionGrant), ret.Error(1)
}

func (_m *AccountAPI) RequestPasswordSet(ctx context.Context) (string, error) {
	ret := _m.Called(ctx)
	return ret.String(0), ret.Error(1)
}

func (_m *AccountAPI) VerifyPasswordSet(ctx context.Context, token, code, password string) (model.SessionGrant, error) {
	ret := _m.Called(ctx, token, code, password)
	return ret.Get(0).(model.SessionGrant), ret.Error(1)
}

// RegistrationAPI is a mock of workflow.RegistrationAPI.
type RegistrationAPI struct {
	mock.Mock
}

func NewRegistrationAPI(t TestingT) *RegistrationAPI {
	m := &RegistrationAPI{}
	register(&m.Mock, t)
	return m
}

func (_m *RegistrationAPI) Register(ctx context.Context, name, email, password string) (string, string, error) {
	ret := _m.Called(ctx, name, email, password)
	return ret.String(0), ret.String(1), ret.Error(2)
}

func (_m *RegistrationAPI) VerifyLink(ctx context.Context, token string) (string, error) {
	ret := _m.Called(ctx, token)
	return ret.String(0), ret.Error(1)
}

func (_m *RegistrationAPI) VerifyOTP(ctx context.Context, token, otp string) (string, error) {
	ret := _m.Called(ctx, token, otp)
	return ret.String(0), ret.Error(1)
}

// LoginAPI is a mock of workflow.LoginAPI.
type LoginAPI struct {
	mock.Mock
}

func NewLoginAPI(t TestingT) *LoginAPI {
	m := &LoginAPI{}
	register(&m.Mock, t)
	return m
}

func (_m *LoginAPI) Login(ctx context.Context, email, password string) (model.SessionGrant, error) {
	ret := _m.Called(ctx, email, password)
	return ret.Get(0).(model.SessionGrant), ret.Error(1)
}
