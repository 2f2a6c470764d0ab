package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// StaticEmbedder Tests
// =============================================================================

func TestStaticEmbedderDeterministic(t *testing.T) {
	e := NewStaticEmbedder()
	ctx := context.Background()

	a, err := e.Embed(ctx, "what is photosynthesis")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "what is photosynthesis")
	require.NoError(t, err)

	assert.Equal(t, a, b, "same text must produce the same vector")
}

func TestStaticEmbedderDimensions(t *testing.T) {
	e := NewStaticEmbedder()

	vec, err := e.Embed(context.Background(), "mitosis")
	require.NoError(t, err)
	assert.Len(t, vec, StaticDimensions)
	assert.Equal(t, StaticDimensions, e.Dimensions())
}

func TestStaticEmbedderNormalized(t *testing.T) {
	e := NewStaticEmbedder()

	vec, err := e.Embed(context.Background(), "newton's laws of motion")
	require.NoError(t, err)

	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 0.001, "vector should be unit length")
}

func TestStaticEmbedderEmptyInput(t *testing.T) {
	e := NewStaticEmbedder()

	vec, err := e.Embed(context.Background(), "   ")
	require.NoError(t, err)
	assert.Len(t, vec, StaticDimensions)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestStaticEmbedderSimilarTextsOverlap(t *testing.T) {
	e := NewStaticEmbedder()
	ctx := context.Background()

	a, _ := e.Embed(ctx, "photosynthesis in plants")
	b, _ := e.Embed(ctx, "photosynthesis in green plants")
	c, _ := e.Embed(ctx, "the french revolution of 1789")

	simAB := dot(a, b)
	simAC := dot(a, c)
	assert.Greater(t, simAB, simAC, "related texts should score higher than unrelated")
}

func TestStaticEmbedderDevanagari(t *testing.T) {
	e := NewStaticEmbedder()

	vec, err := e.Embed(context.Background(), "प्रकाश संश्लेषण")
	require.NoError(t, err)

	nonZero := 0
	for _, v := range vec {
		if v != 0 {
			nonZero++
		}
	}
	assert.Greater(t, nonZero, 0, "non-Latin scripts must still produce signal")
}

func TestStaticEmbedderBatch(t *testing.T) {
	e := NewStaticEmbedder()

	vecs, err := e.EmbedBatch(context.Background(), []string{"osmosis", "diffusion"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.NotEqual(t, vecs[0], vecs[1])
}

func TestStaticEmbedderClosed(t *testing.T) {
	e := NewStaticEmbedder()
	require.NoError(t, e.Close())

	_, err := e.Embed(context.Background(), "anything")
	assert.Error(t, err)
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
