package embed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Factory Tests
// =============================================================================

func TestNewEmbedderStatic(t *testing.T) {
	e, err := NewEmbedder(context.Background(), FactoryConfig{Provider: ProviderStatic}, nil)
	require.NoError(t, err)
	assert.Equal(t, "static-hash", e.ModelName())
}

func TestNewEmbedderOllamaFallsBackToStatic(t *testing.T) {
	// Nothing listens on this port; factory must degrade, not fail
	cfg := FactoryConfig{
		Provider: ProviderOllama,
		Host:     "http://127.0.0.1:1",
		Timeout:  200 * time.Millisecond,
	}
	e, err := NewEmbedder(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "static-hash", e.ModelName())
}

func TestNewEmbedderUnknownProvider(t *testing.T) {
	e, err := NewEmbedder(context.Background(), FactoryConfig{Provider: "quantum"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "static-hash", e.ModelName())
}
