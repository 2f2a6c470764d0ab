package cmd

import (
	"context"
	"log/slog"

	"github.com/shikshalabs/prashna/internal/config"
	"github.com/shikshalabs/prashna/internal/embed"
	"github.com/shikshalabs/prashna/internal/engine"
	"github.com/shikshalabs/prashna/internal/language"
	"github.com/shikshalabs/prashna/internal/query"
	"github.com/shikshalabs/prashna/internal/rag"
	"github.com/shikshalabs/prashna/internal/store"
)

// pipeline holds the wired-up stack behind one CLI invocation.
type pipeline struct {
	cfg      *config.Config
	store    *store.Store
	embedder *embed.CachedEmbedder
	orch     *rag.Orchestrator
}

// buildPipeline wires config, store, embedder, engine, and orchestrator.
// offline forces the static embedder and skips the LLM classifier so no
// Ollama daemon is required.
func buildPipeline(ctx context.Context, offline bool) (*pipeline, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	provider := cfg.Embeddings.Provider
	if offline {
		provider = embed.ProviderStatic
	}
	embedder, err := embed.NewEmbedder(ctx, embed.FactoryConfig{
		Provider:   provider,
		Host:       cfg.Embeddings.OllamaHost,
		Model:      cfg.Embeddings.Model,
		Dimensions: cfg.Embeddings.Dimensions,
		Timeout:    cfg.Embeddings.Timeout,
		CacheSize:  cfg.Cache.EmbeddingSize,
	}, slog.Default())
	if err != nil {
		return nil, err
	}

	st, err := store.NewStore(store.StoreConfig{
		DataDir:    cfg.Store.DataDir,
		Dimensions: embedder.Dimensions(),
	})
	if err != nil {
		_ = embedder.Close()
		return nil, err
	}

	generator := engine.NewCachedGenerator(
		engine.NewOllamaGenerator(cfg.Classifier.OllamaHost, cfg.Engine.GeneratorModel, cfg.Engine.GenerateTimeout),
		cfg.Cache.ResponseSize,
	)

	eng, err := engine.New(st, embedder, engine.Config{
		GeneratorModel:  cfg.Engine.GeneratorModel,
		OllamaHost:      cfg.Classifier.OllamaHost,
		GenerateTimeout: cfg.Engine.GenerateTimeout,
		Weights:         engine.Weights{Keyword: cfg.Engine.KeywordWeight, Semantic: cfg.Engine.SemanticWeight},
		RRFConstant:     cfg.Engine.RRFConstant,
		MaxSources:      cfg.Engine.MaxSources,
	}, engine.WithGenerator(generator))
	if err != nil {
		_ = st.Close()
		_ = embedder.Close()
		return nil, err
	}

	var llm *query.LLMClassifier
	if !offline {
		llm = query.NewLLMClassifier(query.ClassifierConfig{
			Model:      cfg.Classifier.Model,
			Timeout:    cfg.Classifier.Timeout,
			CacheSize:  cfg.Classifier.CacheSize,
			OllamaHost: cfg.Classifier.OllamaHost,
		})
	}
	classifier := query.NewHybridClassifierWithConfig(llm, query.ClassifierConfig{
		CacheSize: cfg.Classifier.CacheSize,
	})

	preprocessor := query.NewPreprocessor(
		query.WithClassifier(classifier),
		query.WithDetector(language.NewDetector(cfg.Language.Default)),
	)

	orch := rag.NewOrchestrator(eng, rag.NewStoreProbe(st),
		rag.WithPreprocessor(preprocessor),
		rag.WithResultCache(rag.NewLRUResultCache(cfg.Cache.QuerySize)),
		rag.WithEmbeddingStats(embedder.Stats),
		rag.WithResponseStats(generator.Stats),
	)

	return &pipeline{
		cfg:      cfg,
		store:    st,
		embedder: embedder,
		orch:     orch,
	}, nil
}

// Close releases the store lock and embedder resources.
func (p *pipeline) Close() {
	_ = p.store.Close()
	_ = p.embedder.Close()
}
