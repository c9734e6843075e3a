package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Longevitate/carefinder/internal/domain/providers"
	"github.com/Longevitate/carefinder/internal/infrastructure/observability"
)

const cacheNamespace = "embedding"

// CachedEmbedder wraps a TextEmbedder with a persistent vector cache keyed
// by model and text hash. Cache failures never fail an Embed call.
type CachedEmbedder struct {
	next    providers.TextEmbedder
	cache   providers.CacheProvider
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewCachedEmbedder creates a caching decorator around next.
func NewCachedEmbedder(next providers.TextEmbedder, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) providers.TextEmbedder {
	return &CachedEmbedder{next: next, cache: cache, ttl: ttl, metrics: metrics}
}

// Model implements providers.TextEmbedder.
func (e *CachedEmbedder) Model() string {
	return e.next.Model()
}

// Embed serves cached vectors and forwards only the misses, in one batch.
func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	logger := observability.LoggerFromContext(ctx)

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = e.cacheKey(text)
	}

	cached, err := e.cache.GetMulti(ctx, keys)
	if err != nil {
		logger.Warn().Err(err).Msg("Embedding cache read failed, embedding all inputs")
		cached = nil
	}

	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string
	for i, key := range keys {
		if raw, ok := cached[key]; ok {
			var vec []float32
			if err := json.Unmarshal(raw, &vec); err == nil && len(vec) > 0 {
				out[i] = vec
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, texts[i])
	}

	hits := len(texts) - len(missIdx)
	for i := 0; i < hits; i++ {
		observability.RecordCacheHit(ctx, e.metrics, cacheNamespace)
	}
	if len(missIdx) == 0 {
		return out, nil
	}
	for range missIdx {
		observability.RecordCacheMiss(ctx, e.metrics, cacheNamespace)
	}

	vectors, err := e.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d inputs", len(vectors), len(missTexts))
	}

	items := make(map[string][]byte, len(missIdx))
	for j, i := range missIdx {
		out[i] = vectors[j]
		if data, err := json.Marshal(vectors[j]); err == nil {
			items[keys[i]] = data
		}
	}
	if err := e.cache.SetMulti(ctx, items, int(e.ttl.Seconds())); err != nil {
		logger.Warn().Err(err).Int("vectors", len(items)).Msg("Failed to write embeddings to cache")
	}
	return out, nil
}

func (e *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s:%s:%s", cacheNamespace, e.next.Model(), hex.EncodeToString(sum[:]))
}
