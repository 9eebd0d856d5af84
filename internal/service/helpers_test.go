package service

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/ats-client/internal/apierr"
	"github.com/dtroode/ats-client/internal/mocks"
	redisrepo "github.com/dtroode/ats-client/internal/repository/redis"
	"github.com/dtroode/ats-client/internal/testutil"
)

type fixture struct {
	users      *mocks.UserStore
	mailer     *mocks.Mailer
	tokens     *mocks.TokenManager
	challenges *redisrepo.ChallengeRepository
	mr         *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return &fixture{
		users:      mocks.NewUserStore(t),
		mailer:     mocks.NewMailer(t),
		tokens:     mocks.NewTokenManager(t),
		challenges: redisrepo.NewChallengeRepository(rdb, "test"),
		mr:         mr,
	}
}

func (f *fixture) auth() *Auth {
	log := testutil.MakeNoopLogger()
	return NewAuth(f.users, f.challenges, f.mailer, NewTokenService(f.tokens, log),
		"http://ats.local/", ChallengeConfig{}, log)
}

func (f *fixture) account() *Account {
	log := testutil.MakeNoopLogger()
	return NewAccount(f.users, f.challenges, f.mailer, NewTokenService(f.tokens, log), ChallengeConfig{}, log)
}

func requireAPIStatus(t *testing.T, err error, status int) {
	t.Helper()
	var apiErr *apierr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, status, apiErr.Status, apiErr.Message)
}

// wrongCode returns a well formed code different from code.
func wrongCode(code string) string {
	if code == "000000" {
		return "000001"
	}
	return "000000"
}
