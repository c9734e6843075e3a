package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Longevitate/carefinder/internal/adapters/cache"
	redisclient "github.com/Longevitate/carefinder/internal/infrastructure/clients/redis"
)

type MockTextEmbedder struct {
	mock.Mock
}

func (m *MockTextEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockTextEmbedder) Model() string {
	return "test-model"
}

func setupCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr
}

func newCached(t *testing.T, mr *miniredis.Miniredis, next *MockTextEmbedder) *CachedEmbedder {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCachedEmbedder(next, cache.NewRedisAdapter(redisclient.NewFromRedis(client)), time.Hour, nil).(*CachedEmbedder)
}

func TestCachedEmbedder_ForwardsOnlyMisses(t *testing.T) {
	mr := setupCache(t)
	next := new(MockTextEmbedder)
	next.On("Embed", mock.Anything, []string{"flu", "x-ray"}).Return([][]float32{{1, 0}, {0, 1}}, nil).Once()
	next.On("Embed", mock.Anything, []string{"lab"}).Return([][]float32{{0.5, 0.5}}, nil).Once()

	e := newCached(t, mr, next)
	ctx := context.Background()

	first, err := e.Embed(ctx, []string{"flu", "x-ray"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, first)

	second, err := e.Embed(ctx, []string{"x-ray", "lab", "flu"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 1}, {0.5, 0.5}, {1, 0}}, second)

	next.AssertExpectations(t)
	assert.Equal(t, "test-model", e.Model())
	assert.True(t, mr.Exists(e.cacheKey("lab")))
	assert.Greater(t, mr.TTL(e.cacheKey("lab")), time.Duration(0))
}

func TestCachedEmbedder_CacheDownStillEmbeds(t *testing.T) {
	mr := setupCache(t)
	next := new(MockTextEmbedder)
	next.On("Embed", mock.Anything, []string{"flu"}).Return([][]float32{{1}}, nil)

	e := newCached(t, mr, next)
	mr.Close()

	vectors, err := e.Embed(context.Background(), []string{"flu"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}}, vectors)
}

func TestCachedEmbedder_PropagatesEmbedderErrors(t *testing.T) {
	mr := setupCache(t)
	next := new(MockTextEmbedder)
	next.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))

	_, err := newCached(t, mr, next).Embed(context.Background(), []string{"flu"})
	assert.ErrorContains(t, err, "quota exceeded")
}
