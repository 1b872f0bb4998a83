package authflowrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jrsteele09/vkid-relay/internal/errors"
	"github.com/jrsteele09/vkid-relay/pkce"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "vkid:pending"

// RedisRepo keeps pending authorizations in Redis so several relay instances can share them.
// Expiry is delegated to the key TTL.
type RedisRepo struct {
	redis   *redis.Client
	ttl     time.Duration
	nowTime func() time.Time
}

var _ Repo = (*RedisRepo)(nil)

// NewRedisRepo stores pending logins in Redis with ttl as the key expiry.
func NewRedisRepo(client *redis.Client, ttl time.Duration) *RedisRepo {
	return &RedisRepo{redis: client, ttl: ttl, nowTime: time.Now}
}

func (r *RedisRepo) key(state pkce.CorrelationToken) string {
	return redisKeyPrefix + ":" + string(state)
}

// Put records the verifier for state unless a live entry already holds it.
func (r *RedisRepo) Put(ctx context.Context, state pkce.CorrelationToken, verifier string) error {
	if state == "" || verifier == "" {
		return errors.Wrapf(errors.ErrInvalidRequest, "state and verifier are required")
	}

	now := r.nowTime()
	encoded, err := json.Marshal(PendingAuthorization{
		State:        state,
		CodeVerifier: verifier,
		CreatedAt:    now,
		ExpiresAt:    now.Add(r.ttl),
	})
	if err != nil {
		return fmt.Errorf("[RedisRepo Put] encode: %w", err)
	}

	stored, err := r.redis.SetNX(ctx, r.key(state), encoded, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	if !stored {
		return errors.ErrStateCollision
	}
	return nil
}

// Take atomically reads and deletes the verifier for state.
func (r *RedisRepo) Take(ctx context.Context, state pkce.CorrelationToken) (string, error) {
	if state == "" {
		return "", errors.ErrUnknownState
	}

	data, err := r.redis.GetDel(ctx, r.key(state)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errors.ErrUnknownState
		}
		return "", fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}

	var pending PendingAuthorization
	if err := json.Unmarshal(data, &pending); err != nil {
		return "", fmt.Errorf("[RedisRepo Take] decode: %w", err)
	}
	if !r.nowTime().Before(pending.ExpiresAt) {
		return "", errors.ErrUnknownState
	}
	return pending.CodeVerifier, nil
}
