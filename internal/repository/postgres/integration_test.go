//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/ats-client/internal/model"
	repo "github.com/dtroode/ats-client/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "ats_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/ats_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newUser(email string) model.User {
	now := time.Now()
	return model.User{
		ID:           uuid.New(),
		Name:         "Alice",
		Email:        email,
		PasswordHash: []byte("hash"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.Ping(ctx))

	ur := repo.NewUserRepository(conn)

	t.Run("create and read", func(t *testing.T) {
		u := newUser("user@example.com")
		saved, err := ur.Create(ctx, u)
		require.NoError(t, err)
		require.Equal(t, u.ID, saved.ID)
		require.False(t, saved.Verified)

		byEmail, err := ur.GetByEmail(ctx, "USER@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, byEmail.ID)

		byID, err := ur.GetByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.Email, byID.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := ur.Create(ctx, newUser("dup@example.com"))
		require.NoError(t, err)
		_, err = ur.Create(ctx, newUser("dup@example.com"))
		require.ErrorIs(t, err, model.ErrAlreadyExists)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := ur.GetByID(ctx, uuid.New())
		require.ErrorIs(t, err, model.ErrNotFound)
		require.ErrorIs(t, ur.MarkVerified(ctx, uuid.New()), model.ErrNotFound)
	})

	t.Run("updates", func(t *testing.T) {
		u, err := ur.Create(ctx, newUser("old@example.com"))
		require.NoError(t, err)

		require.NoError(t, ur.MarkVerified(ctx, u.ID))
		updated, err := ur.UpdateEmail(ctx, u.ID, "new@example.com")
		require.NoError(t, err)
		require.Equal(t, "new@example.com", updated.Email)
		require.True(t, updated.Verified)

		require.NoError(t, ur.UpdatePassword(ctx, u.ID, []byte("other")))
		got, err := ur.GetByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, []byte("other"), got.PasswordHash)
	})
}
