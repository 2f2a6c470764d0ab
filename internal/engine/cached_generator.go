package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/shikshalabs/prashna/internal/cache"
)

// DefaultResponseCacheSize is the default generated-answer cache size.
const DefaultResponseCacheSize = 1000

// CachedGenerator memoizes generated answers by prompt. Its counters
// are the "response" cache class on the health surface.
type CachedGenerator struct {
	inner Generator
	cache *cache.Store[string, string]
}

var _ Generator = (*CachedGenerator)(nil)

// NewCachedGenerator wraps a generator with an LRU answer cache.
func NewCachedGenerator(inner Generator, size int) *CachedGenerator {
	if size <= 0 {
		size = DefaultResponseCacheSize
	}
	return &CachedGenerator{
		inner: inner,
		cache: cache.New[string, string](size),
	}
}

// Generate returns the cached answer for an identical prompt, or
// delegates and caches. Failures are never cached.
func (c *CachedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	hash := sha256.Sum256([]byte(prompt))
	key := hex.EncodeToString(hash[:])

	if answer, ok := c.cache.Get(key); ok {
		return answer, nil
	}

	answer, err := c.inner.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	c.cache.Set(key, answer)
	return answer, nil
}

// Stats returns the response cache counters.
func (c *CachedGenerator) Stats() cache.Stats {
	return c.cache.Stats()
}
