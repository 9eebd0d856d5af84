package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/ats-client/internal/model"
)

// SessionManager is a mock of workflow.SessionManager.
type SessionManager struct {
	mock.Mock
}

func NewSessionManager(t TestingT) *SessionManager {
	m := &SessionManager{}
	register(&m.Mock, t)
	return m
}

func (_m *SessionManager) Snapshot() model.Session {
	ret := _m.Called()
	return ret.Get(0).(model.Session)
}

func (_m *SessionManager) Replace(ctx context.Context, session model.Session) error {
	ret := _m.Called(ctx, session)
	return ret.Error(0)
}

func (_m *SessionManager) Clear(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

// SessionStore is a mock of model.SessionStore.
type SessionStore struct {
	mock.Mock
}

func NewSessionStore(t TestingT) *SessionStore {
	m := &SessionStore{}
	register(&m.Mock, t)
	return m
}

func (_m *SessionStore) Load(ctx context.Context) (model.Session, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(model.Session), ret.Error(1)
}

func (_m *SessionStore) Save(ctx context.Context, session model.Session) error {
	ret := _m.Called(ctx, session)
	return ret.Error(0)
}

func (_m *SessionStore) Clear(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}
