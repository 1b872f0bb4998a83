package authflowrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/vkid-relay/internal/errors"
	"github.com/jrsteele09/vkid-relay/server/authflowrepo"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T, ttl time.Duration) (*authflowrepo.RedisRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return authflowrepo.NewRedisRepo(rdb, ttl), mr
}

func TestRedisRepo_PutTake(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, 10*time.Minute)

	require.NoError(t, repo.Put(ctx, "S", "V"))
	require.True(t, mr.Exists("vkid:pending:S"))
	require.Equal(t, 10*time.Minute, mr.TTL("vkid:pending:S"))

	v, err := repo.Take(ctx, "S")
	require.NoError(t, err)
	require.Equal(t, "V", v)
	require.False(t, mr.Exists("vkid:pending:S"))

	_, err = repo.Take(ctx, "S")
	require.ErrorIs(t, err, errors.ErrUnknownState)
}

func TestRedisRepo_Collision(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRedisRepo(t, time.Minute)

	require.NoError(t, repo.Put(ctx, "S", "first"))
	require.ErrorIs(t, repo.Put(ctx, "S", "second"), errors.ErrStateCollision)

	v, err := repo.Take(ctx, "S")
	require.NoError(t, err)
	require.Equal(t, "first", v)
}

func TestRedisRepo_Expiry(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, time.Minute)

	require.NoError(t, repo.Put(ctx, "S", "V"))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Take(ctx, "S")
	require.ErrorIs(t, err, errors.ErrUnknownState)
}

func TestRedisRepo_BackendDown(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, time.Minute)
	mr.Close()

	err := repo.Put(ctx, "S", "V")
	require.ErrorIs(t, err, errors.ErrStoreUnavailable)

	_, err = repo.Take(ctx, "S")
	require.ErrorIs(t, err, errors.ErrStoreUnavailable)
}
