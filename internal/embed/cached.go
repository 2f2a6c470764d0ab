package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/shikshalabs/prashna/internal/cache"
)

// DefaultEmbeddingCacheSize is the default number of embeddings to keep.
// At 768 dimensions * 4 bytes * 1000 entries it is roughly 3MB.
const DefaultEmbeddingCacheSize = 1000

// CachedEmbedder wraps an Embedder with an LRU cache so repeated
// queries skip the embedding round trip. Its hit/miss counters are the
// "embedding" cache class reported by the health endpoint.
type CachedEmbedder struct {
	inner Embedder
	cache *cache.Store[string, []float32]
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder creates a cached embedder wrapping inner.
func NewCachedEmbedder(inner Embedder, cacheSize int) *CachedEmbedder {
	if cacheSize <= 0 {
		cacheSize = DefaultEmbeddingCacheSize
	}
	return &CachedEmbedder{
		inner: inner,
		cache: cache.New[string, []float32](cacheSize),
	}
}

// cacheKey hashes text together with the model name so switching
// models never serves stale vectors.
func (c *CachedEmbedder) cacheKey(text string) string {
	combined := text + "\x00" + c.inner.ModelName()
	hash := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(hash[:])
}

// Embed returns a cached embedding if available, otherwise computes
// and caches it.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, vec)
	return vec, nil
}

// EmbedBatch checks the cache per text and embeds only the misses,
// preserving input order in the result.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	uncachedIdx := make([]int, 0, len(texts))
	uncached := make([]string, 0, len(texts))

	for i, text := range texts {
		if vec, ok := c.cache.Get(c.cacheKey(text)); ok {
			results[i] = vec
			continue
		}
		uncachedIdx = append(uncachedIdx, i)
		uncached = append(uncached, text)
	}

	if len(uncached) > 0 {
		vecs, err := c.inner.EmbedBatch(ctx, uncached)
		if err != nil {
			return nil, err
		}
		for j, vec := range vecs {
			i := uncachedIdx[j]
			results[i] = vec
			c.cache.Set(c.cacheKey(texts[i]), vec)
		}
	}

	return results, nil
}

// Stats returns the embedding cache counters.
func (c *CachedEmbedder) Stats() cache.Stats {
	return c.cache.Stats()
}

// Dimensions returns the inner embedder's dimension.
func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

// ModelName returns the inner embedder's model identifier.
func (c *CachedEmbedder) ModelName() string { return c.inner.ModelName() }

// Available reports the inner embedder's readiness.
func (c *CachedEmbedder) Available(ctx context.Context) bool { return c.inner.Available(ctx) }

// Close closes the inner embedder.
func (c *CachedEmbedder) Close() error { return c.inner.Close() }
