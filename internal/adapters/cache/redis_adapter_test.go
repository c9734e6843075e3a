package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Longevitate/carefinder/internal/domain/providers"
	redisclient "github.com/Longevitate/carefinder/internal/infrastructure/clients/redis"
)

func setupAdapter(t *testing.T) (*miniredis.Miniredis, providers.CacheProvider) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisAdapter(redisclient.NewFromRedis(client))
}

func TestRedisAdapter_MultiOperations(t *testing.T) {
	mr, cache := setupAdapter(t)
	ctx := context.Background()

	require.NoError(t, cache.SetMulti(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, 60))
	assert.Greater(t, mr.TTL("a"), time.Duration(0))

	got, err := cache.GetMulti(ctx, []string{"a", "missing", "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, got)

	empty, err := cache.GetMulti(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRedisAdapter_ServerDown(t *testing.T) {
	mr, cache := setupAdapter(t)
	mr.Close()

	_, err := cache.GetMulti(context.Background(), []string{"k"})
	require.Error(t, err)
	assert.Error(t, cache.SetMulti(context.Background(), map[string][]byte{"k": []byte("v")}, 60))
}

func TestRedisAdapter_ExpiredKeysAreAbsent(t *testing.T) {
	mr, cache := setupAdapter(t)
	ctx := context.Background()

	require.NoError(t, cache.SetMulti(ctx, map[string][]byte{"k": []byte("v")}, 60))
	mr.FastForward(61 * time.Second)

	got, err := cache.GetMulti(ctx, []string{"k"})
	require.NoError(t, err)
	assert.Empty(t, got)
}
