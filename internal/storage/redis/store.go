// Package redis mirrors the session into a Redis hash.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/ats-client/internal/model"
)

// Store keeps the session as a hash with one field per session key.
type Store struct {
	rdb *redis.Client
	key string
}

var _ model.SessionStore = (*Store)(nil)

// NewStore creates a Redis-backed session store under key.
func NewStore(rdb *redis.Client, key string) *Store {
	return &Store{rdb: rdb, key: key}
}

// Load reads the hash. It returns model.ErrNotFound when the key is absent.
func (s *Store) Load(ctx context.Context) (model.Session, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to read session: %w", err)
	}
	if len(fields) == 0 {
		return model.Session{}, model.ErrNotFound
	}
	return model.SessionFromFields(fields), nil
}

// Save replaces the whole hash in one MULTI/EXEC.
func (s *Store) Save(ctx context.Context, session model.Session) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key, session.Fields())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear deletes the hash.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
