package embed

import (
	"context"
	"log/slog"
	"time"
)

// Provider names accepted by the factory.
const (
	ProviderOllama = "ollama"
	ProviderStatic = "static"
)

// FactoryConfig selects and configures an embedding provider.
type FactoryConfig struct {
	// Provider is "ollama" or "static".
	Provider string

	// Host is the Ollama API base URL (ollama provider only).
	Host string

	// Model is the embedding model name (ollama provider only).
	Model string

	// Dimensions is the expected embedding size; 0 auto-detects.
	Dimensions int

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// CacheSize is the LRU capacity for the caching layer.
	CacheSize int
}

// NewEmbedder builds the configured provider wrapped in a CachedEmbedder.
// An unreachable Ollama daemon degrades to the static embedder with a
// warning instead of failing startup.
func NewEmbedder(ctx context.Context, cfg FactoryConfig, logger *slog.Logger) (*CachedEmbedder, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var inner Embedder
	switch cfg.Provider {
	case ProviderStatic:
		inner = NewStaticEmbedder()

	case ProviderOllama, "":
		ollama, err := NewOllamaEmbedder(ctx, OllamaConfig{
			Host:       cfg.Host,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    cfg.Timeout,
		})
		if err != nil {
			logger.Warn("ollama embedder unavailable, falling back to static",
				"host", cfg.Host, "error", err)
			inner = NewStaticEmbedder()
		} else {
			inner = ollama
		}

	default:
		logger.Warn("unknown embedding provider, using static", "provider", cfg.Provider)
		inner = NewStaticEmbedder()
	}

	logger.Info("embedder initialized",
		"model", inner.ModelName(),
		"dimensions", inner.Dimensions(),
	)
	return NewCachedEmbedder(inner, cfg.CacheSize), nil
}
