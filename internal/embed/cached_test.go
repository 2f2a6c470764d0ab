package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder wraps StaticEmbedder and counts Embed calls.
type countingEmbedder struct {
	*StaticEmbedder
	embedCalls int
	batchCalls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.embedCalls++
	return c.StaticEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.batchCalls++
	return c.StaticEmbedder.EmbedBatch(ctx, texts)
}

// =============================================================================
// CachedEmbedder Tests
// =============================================================================

func TestCachedEmbedderCachesRepeatQueries(t *testing.T) {
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder()}
	c := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	a, err := c.Embed(ctx, "what is dna")
	require.NoError(t, err)
	b, err := c.Embed(ctx, "what is dna")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 1, inner.embedCalls, "second call must be served from cache")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestCachedEmbedderBatchPartialHits(t *testing.T) {
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder()}
	c := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	_, err := c.Embed(ctx, "osmosis")
	require.NoError(t, err)

	vecs, err := c.EmbedBatch(ctx, []string{"osmosis", "diffusion"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	// Only the uncached text goes to the inner embedder
	assert.Equal(t, 1, inner.batchCalls)

	direct, err := inner.StaticEmbedder.Embed(ctx, "diffusion")
	require.NoError(t, err)
	assert.Equal(t, direct, vecs[1], "batch results must keep input order")
}

func TestCachedEmbedderEmptyBatch(t *testing.T) {
	c := NewCachedEmbedder(NewStaticEmbedder(), 10)

	vecs, err := c.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestCachedEmbedderDelegates(t *testing.T) {
	inner := NewStaticEmbedder()
	c := NewCachedEmbedder(inner, 10)

	assert.Equal(t, inner.Dimensions(), c.Dimensions())
	assert.Equal(t, inner.ModelName(), c.ModelName())
	assert.True(t, c.Available(context.Background()))
	assert.NoError(t, c.Close())
}
