package providers

import "context"

// CacheProvider defines the batch caching operations used by the embedding cache
type CacheProvider interface {
	// GetMulti retrieves several keys at once; absent keys are left out of the result.
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)

	// SetMulti stores several values with one expiration
	SetMulti(ctx context.Context, items map[string][]byte, expirationSeconds int) error
}
