package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apictx "github.com/dtroode/ats-client/internal/api/http/context"
	"github.com/dtroode/ats-client/internal/api/rest"
	"github.com/dtroode/ats-client/internal/apierr"
	"github.com/dtroode/ats-client/internal/model"
	redisrepo "github.com/dtroode/ats-client/internal/repository/redis"
	"github.com/dtroode/ats-client/internal/service"
	"github.com/dtroode/ats-client/internal/session"
	"github.com/dtroode/ats-client/internal/storage/file"
	"github.com/dtroode/ats-client/internal/testutil"
	"github.com/dtroode/ats-client/internal/token"
	"github.com/dtroode/ats-client/internal/workflow"
)

type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

var _ model.UserStore = (*memUsers)(nil)

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) Create(_ context.Context, user model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return user, nil
}

func (m *memUsers) update(id uuid.UUID, fn func(*model.User)) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	fn(&u)
	m.users[id] = u
	return u, nil
}

func (m *memUsers) MarkVerified(_ context.Context, id uuid.UUID) error {
	_, err := m.update(id, func(u *model.User) { u.Verified = true })
	return err
}

func (m *memUsers) UpdateEmail(_ context.Context, id uuid.UUID, email string) (model.User, error) {
	return m.update(id, func(u *model.User) { u.Email = email })
}

func (m *memUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash []byte) error {
	_, err := m.update(id, func(u *model.User) { u.PasswordHash = hash })
	return err
}

type inbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (i *inbox) SendVerification(_ context.Context, to, _, _, code string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.codes[to] = code
	return nil
}

func (i *inbox) SendCode(_ context.Context, to string, _ model.ChallengeKind, code string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.codes[to] = code
	return nil
}

func (i *inbox) code(to string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.codes[to]
}

func newTestServer(t *testing.T) (*httptest.Server, *inbox) {
	t.Helper()
	log := testutil.MakeNoopLogger()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	users := &memUsers{users: map[uuid.UUID]model.User{}}
	mail := &inbox{codes: map[string]string{}}
	challenges := redisrepo.NewChallengeRepository(rdb, "test")
	tokens := service.NewTokenService(token.NewJWT("secret", time.Hour), log)

	authSvc := service.NewAuth(users, challenges, mail, tokens, "http://ats.local", service.ChallengeConfig{}, log)
	accountSvc := service.NewAccount(users, challenges, mail, tokens, service.ChallengeConfig{}, log)

	engine := New(authSvc, accountSvc, tokens, apictx.NewManager(), []string{"http://app.local"}, log).Register()
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv, mail
}

func TestRouter_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRouter_CORS(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/auth/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://app.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://app.local", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_AccountRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t)
	c := rest.NewClient(srv.URL, 5*time.Second, nil, testutil.MakeNoopLogger())

	_, err := c.Profile(context.Background())
	var appErr *apierr.ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
}

func TestRouter_EndToEnd(t *testing.T) {
	ctx := context.Background()
	log := testutil.MakeNoopLogger()
	srv, mail := newTestServer(t)

	sessions := session.NewManager(file.NewStore(filepath.Join(t.TempDir(), "session.json")), log,
		session.WithExpiryReader(token.NewExpiry()))
	client := rest.NewClient(srv.URL, 5*time.Second, sessions, log)

	// Register and verify through the code, then the link is idempotent.
	reg := workflow.NewRegistration(client, log)
	_, err := reg.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	msg, err := reg.VerifyOTP(ctx, mail.code("alice@example.com"))
	require.NoError(t, err)
	assert.Equal(t, service.MessageEmailVerified, msg)

	msg, err = reg.VerifyLink(ctx)
	require.NoError(t, err)
	assert.Equal(t, service.MessageAlreadyVerified, msg)

	// Log in.
	auth := workflow.NewAuth(client, sessions, log)
	s, err := auth.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)
	assert.True(t, s.Complete())

	// Change the email.
	var observed string
	change := workflow.NewCredentialChange(workflow.KindEmailChange, client, sessions, log,
		workflow.WithObserver(func(_ workflow.Kind, v string) { observed = v }))
	require.NoError(t, change.Submit(ctx, "alice@new.example.com"))

	err = change.SubmitCode(ctx, wrong(mail.code("alice@new.example.com")))
	var failure *workflow.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "Invalid OTP", failure.Message())
	assert.Equal(t, workflow.PhaseAwaitingCode, change.State().Phase)

	require.NoError(t, change.SubmitCode(ctx, mail.code("alice@new.example.com")))
	assert.Equal(t, workflow.PhaseCommitted, change.State().Phase)
	assert.Equal(t, "alice@new.example.com", observed)
	assert.Equal(t, "alice@new.example.com", sessions.Snapshot().Email)
	assert.NotEmpty(t, sessions.AuthToken())

	profile, err := client.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", profile.Email)

	// Set a new password and log in with it.
	pw := workflow.NewCredentialChange(workflow.KindPasswordSet, client, sessions, log)
	require.NoError(t, pw.Submit(ctx, "brand-new-password"))
	require.NoError(t, pw.SubmitCode(ctx, mail.code("alice@new.example.com")))

	require.NoError(t, auth.Logout(ctx))
	assert.Empty(t, sessions.AuthToken())

	_, err = auth.Login(ctx, "alice@new.example.com", "password1")
	require.Error(t, err)
	s, err = auth.Login(ctx, "alice@new.example.com", "brand-new-password")
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", s.Email)
}

func wrong(code string) string {
	if code == "000000" {
		return "000001"
	}
	return "000000"
}
