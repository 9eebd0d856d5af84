// Package redis stores pending challenges as Redis hashes with a TTL.
package redis

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dtroode/ats-client/internal/model"
)

var _ model.ChallengeStore = (*ChallengeRepository)(nil)

// consumeChallengeLua atomically validates and consumes a challenge.
// KEYS[1] = challenge key
// ARGV[1] = "1" to compare the code hash, "0" otherwise
// ARGV[2] = provided code hash
// ARGV[3] = max attempts
// ARGV[4] = owner user id, empty to accept any
//
// Returns the hash as a flat field/value list on success, or an error
// string: "not_found", "owner_mismatch", "consumed", "code_mismatch",
// "attempts_exceeded".
var consumeChallengeLua = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {err='not_found'}
end

if ARGV[4] ~= '' and redis.call('HGET', KEYS[1], 'user_id') ~= ARGV[4] then
  return {err='owner_mismatch'}
end

if redis.call('HGET', KEYS[1], 'consumed') == '1' then
  return {err='consumed'}
end

if ARGV[1] == '1' then
  local stored = redis.call('HGET', KEYS[1], 'code_hash')
  if stored ~= ARGV[2] then
    local attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
    if attempts >= tonumber(ARGV[3]) then
      redis.call('DEL', KEYS[1])
      return {err='attempts_exceeded'}
    end
    return {err='code_mismatch'}
  end
end

redis.call('HSET', KEYS[1], 'consumed', '1')
return redis.call('HGETALL', KEYS[1])
`)

// ChallengeRepository keeps challenges under prefix:kind:token. Consumed
// challenges stay flagged until they expire so a second confirmation of
// the same challenge is recognised.
type ChallengeRepository struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewChallengeRepository(rdb redis.UniversalClient, prefix string) *ChallengeRepository {
	if prefix == "" {
		prefix = "ats:challenge"
	}
	return &ChallengeRepository{rdb: rdb, prefix: prefix}
}

func (r *ChallengeRepository) key(kind model.ChallengeKind, token string) string {
	return r.prefix + ":" + string(kind) + ":" + token
}

func (r *ChallengeRepository) Create(ctx context.Context, c model.Challenge) error {
	if c.Token == "" {
		return errors.New("challenge token is empty")
	}
	if !c.ExpiresAt.After(time.Now()) {
		return errors.New("challenge already expired")
	}

	key := r.key(c.Kind, c.Token)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]any{
			"kind":       string(c.Kind),
			"user_id":    c.UserID.String(),
			"value":      c.Value,
			"code_hash":  c.CodeHash,
			"attempts":   c.Attempts,
			"consumed":   boolField(c.Consumed),
			"expires_at": c.ExpiresAt.UnixMilli(),
		})
		pipe.PExpireAt(ctx, key, c.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

func (r *ChallengeRepository) Consume(
	ctx context.Context,
	kind model.ChallengeKind,
	token string,
	owner uuid.UUID,
	checkCode bool,
	codeHash string,
	maxAttempts int,
) (model.Challenge, error) {
	if maxAttempts < 1 {
		maxAttempts = model.DefaultChallengeMaxAttempts
	}
	ownerArg := ""
	if owner != uuid.Nil {
		ownerArg = owner.String()
	}

	result, err := consumeChallengeLua.Run(ctx, r.rdb,
		[]string{r.key(kind, token)},
		boolField(checkCode),
		codeHash,
		maxAttempts,
		ownerArg,
	).StringSlice()
	if err != nil {
		switch err.Error() {
		case "not_found":
			return model.Challenge{}, model.ErrNotFound
		case "owner_mismatch":
			return model.Challenge{}, model.ErrChallengeOwner
		case "consumed":
			return model.Challenge{}, model.ErrChallengeConsumed
		case "code_mismatch":
			return model.Challenge{}, model.ErrCodeMismatch
		case "attempts_exceeded":
			return model.Challenge{}, model.ErrAttemptsExceeded
		default:
			return model.Challenge{}, fmt.Errorf("failed to consume challenge: %w", err)
		}
	}

	c, err := decodeChallenge(token, result)
	if err != nil {
		return model.Challenge{}, fmt.Errorf("failed to decode challenge: %w", err)
	}
	if checkCode && subtle.ConstantTimeCompare([]byte(c.CodeHash), []byte(codeHash)) != 1 {
		return model.Challenge{}, model.ErrCodeMismatch
	}
	return c, nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func decodeChallenge(token string, flat []string) (model.Challenge, error) {
	if len(flat)%2 != 0 {
		return model.Challenge{}, errors.New("odd field list")
	}
	fields := make(map[string]string, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		fields[flat[i]] = flat[i+1]
	}

	userID, err := uuid.Parse(fields["user_id"])
	if err != nil {
		return model.Challenge{}, fmt.Errorf("user_id: %w", err)
	}
	attempts, err := strconv.Atoi(fields["attempts"])
	if err != nil {
		return model.Challenge{}, fmt.Errorf("attempts: %w", err)
	}
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return model.Challenge{}, fmt.Errorf("expires_at: %w", err)
	}

	return model.Challenge{
		Token:     token,
		Kind:      model.ChallengeKind(fields["kind"]),
		UserID:    userID,
		Value:     fields["value"],
		CodeHash:  fields["code_hash"],
		Attempts:  attempts,
		Consumed:  fields["consumed"] == "1",
		ExpiresAt: time.UnixMilli(expiresAt),
	}, nil
}
