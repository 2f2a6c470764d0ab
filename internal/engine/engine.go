package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/shikshalabs/prashna/internal/embed"
	prerrors "github.com/shikshalabs/prashna/internal/errors"
	"github.com/shikshalabs/prashna/internal/query"
	"github.com/shikshalabs/prashna/internal/store"
)

// retrievalLimit is how many candidates each retriever contributes
// before fusion.
const retrievalLimit = 20

// snippetLength caps citation excerpts.
const snippetLength = 240

// Engine executes answering strategies against a document store, an
// embedder, and a text generator.
type Engine struct {
	store     *store.Store
	embedder  embed.Embedder
	generator Generator
	fusion    *RRFFusion
	config    Config
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithGenerator replaces the default Ollama generator.
func WithGenerator(g Generator) Option {
	return func(e *Engine) { e.generator = g }
}

// WithEngineLogger sets the logger.
func WithEngineLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an engine. st and embedder are required for the
// retrieval strategy; the generator defaults to Ollama per cfg.
func New(st *store.Store, embedder embed.Embedder, cfg Config, opts ...Option) (*Engine, error) {
	if st == nil {
		return nil, prerrors.InternalError("engine requires a document store", nil)
	}
	if embedder == nil {
		return nil, prerrors.InternalError("engine requires an embedder", nil)
	}
	if cfg.MaxSources <= 0 {
		cfg.MaxSources = DefaultConfig().MaxSources
	}
	if cfg.Weights.Keyword == 0 && cfg.Weights.Semantic == 0 {
		cfg.Weights = DefaultConfig().Weights
	}

	e := &Engine{
		store:    st,
		embedder: embedder,
		fusion:   NewRRFFusion(cfg.RRFConstant),
		config:   cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.generator == nil {
		e.generator = NewOllamaGenerator(cfg.OllamaHost, cfg.GeneratorModel, cfg.GenerateTimeout)
	}
	return e, nil
}

// MakeDecision exposes the decision table as a method so callers can
// depend on one value for both deciding and executing.
func (e *Engine) MakeDecision(queryType query.Type, hasDocuments bool, historyLength int, languageCode string) Decision {
	return MakeDecision(queryType, hasDocuments, historyLength, languageCode)
}

// ExecuteStrategy runs the decided strategy and produces an answer with
// citations. Template strategies never fail; generative strategies fall
// back to templates when the model is unreachable. Only infrastructure
// failures (store unavailable, both retrievers down) return an error.
func (e *Engine) ExecuteStrategy(
	ctx context.Context,
	decision Decision,
	optimizedQuery string,
	history []query.ChatMessage,
	collectionID string,
	languageCode string,
) (StrategyResult, error) {
	switch decision.Strategy {
	case StrategyGreeting:
		return templateResult(greetingTemplates, languageCode), nil

	case StrategyClarification:
		return templateResult(clarificationTemplates, languageCode), nil

	case StrategyOutOfScope:
		return templateResult(outOfScopeTemplates, languageCode), nil

	case StrategyDirectAnswer:
		return e.generateDirect(ctx, optimizedQuery, languageCode, map[string]any{
			"retrieval": false,
		}), nil

	case StrategyGeneralKnowledge:
		return e.generateDirect(ctx, optimizedQuery, languageCode, map[string]any{
			"retrieval": false,
			"reason":    "no_documents",
		}), nil

	case StrategyRetrievalAugmented:
		return e.executeRetrieval(ctx, optimizedQuery, history, collectionID, languageCode)

	default:
		return StrategyResult{}, prerrors.New(prerrors.ErrCodeStrategyFailed,
			"unknown strategy: "+decision.Strategy, nil)
	}
}

// templateResult wraps a localized template as a StrategyResult.
func templateResult(templates map[string]string, languageCode string) StrategyResult {
	return StrategyResult{
		Answer:   templateFor(templates, languageCode),
		Sources:  []Source{},
		Metadata: map[string]any{"generated": false},
	}
}

// generateDirect answers from general knowledge, degrading to a
// localized template when the model is unreachable.
func (e *Engine) generateDirect(ctx context.Context, q, languageCode string, meta map[string]any) StrategyResult {
	prompt := buildDirectPrompt(query.ExpandAcronyms(q), languageCode)

	answer, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("generator unavailable for direct answer", "error", err)
		meta["generated"] = false
		return StrategyResult{
			Answer:   templateFor(noAnswerTemplates, languageCode),
			Sources:  []Source{},
			Metadata: meta,
		}
	}

	meta["generated"] = true
	return StrategyResult{Answer: answer, Sources: []Source{}, Metadata: meta}
}

// executeRetrieval runs hybrid search, fuses the rankings, and asks the
// generator for a grounded answer over the top documents.
func (e *Engine) executeRetrieval(
	ctx context.Context,
	optimizedQuery string,
	history []query.ChatMessage,
	collectionID string,
	languageCode string,
) (StrategyResult, error) {
	collection, err := e.store.InitCollection(collectionID)
	if err != nil {
		return StrategyResult{}, err
	}

	searchQuery := query.ExpandAcronyms(optimizedQuery)
	keywordResults, vecResults, err := e.parallelSearch(ctx, collection, searchQuery)
	if err != nil {
		return StrategyResult{}, err
	}

	fused := e.fusion.Fuse(keywordResults, vecResults, e.config.Weights)
	if len(fused) > e.config.MaxSources {
		fused = fused[:e.config.MaxSources]
	}

	if len(fused) == 0 {
		// Nothing relevant indexed; answer from general knowledge
		e.logger.Debug("retrieval found nothing, using general knowledge",
			"collection", collectionID, "query", optimizedQuery)
		return e.generateDirect(ctx, optimizedQuery, languageCode, map[string]any{
			"retrieval": true,
			"reason":    "no_matches",
		}), nil
	}

	ids := make([]string, len(fused))
	for i, r := range fused {
		ids[i] = r.DocumentID
	}
	docs, err := collection.GetDocuments(ctx, ids)
	if err != nil {
		return StrategyResult{}, err
	}

	scoreByID := make(map[string]float64, len(fused))
	for _, r := range fused {
		scoreByID[r.DocumentID] = r.RRFScore
	}

	passages := make([]string, 0, len(docs))
	sources := make([]Source, 0, len(docs))
	for _, doc := range docs {
		passages = append(passages, doc.Content)
		sources = append(sources, Source{
			DocumentID: doc.ID,
			Snippet:    snippet(doc.Content),
			Reference:  doc.Source,
			Score:      scoreByID[doc.ID],
		})
	}

	meta := map[string]any{
		"retrieval":   true,
		"sourceCount": len(sources),
	}

	prompt := buildRetrievalPrompt(optimizedQuery, passages, history, languageCode)
	answer, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		// Extractive fallback: surface the best passage verbatim
		e.logger.Warn("generator unavailable, returning extractive answer", "error", err)
		meta["generated"] = false
		return StrategyResult{
			Answer:   extractiveAnswer(sources[0], languageCode),
			Sources:  sources,
			Metadata: meta,
		}, nil
	}

	meta["generated"] = true
	return StrategyResult{Answer: answer, Sources: sources, Metadata: meta}, nil
}

// parallelSearch runs keyword and vector search concurrently. One
// retriever failing degrades to the other's results; both failing is an
// error for the orchestrator boundary.
func (e *Engine) parallelSearch(ctx context.Context, collection *store.Collection, searchQuery string) (
	keywordResults []*store.KeywordResult,
	vecResults []*store.VectorResult,
	err error,
) {
	g, gctx := errgroup.WithContext(ctx)

	var keywordErr, vecErr error

	g.Go(func() error {
		var searchErr error
		keywordResults, searchErr = collection.SearchKeyword(gctx, searchQuery, retrievalLimit)
		if searchErr != nil {
			keywordErr = searchErr
			// let the vector side finish
		}
		return nil
	})

	g.Go(func() error {
		embedding, embedErr := e.embedder.Embed(gctx, searchQuery)
		if embedErr != nil {
			vecErr = embedErr
			return nil
		}
		var searchErr error
		vecResults, searchErr = collection.SearchVector(gctx, embedding, retrievalLimit)
		if searchErr != nil {
			vecErr = searchErr
		}
		return nil
	})

	if waitErr := g.Wait(); waitErr != nil {
		return nil, nil, waitErr
	}

	if keywordErr != nil && vecErr != nil {
		return nil, nil, prerrors.New(prerrors.ErrCodeStrategyFailed,
			"both retrievers failed", errors.Join(keywordErr, vecErr))
	}
	if keywordErr != nil {
		e.logger.Warn("keyword search failed, using vector results only", "error", keywordErr)
	}
	if vecErr != nil {
		e.logger.Warn("vector search failed, using keyword results only", "error", vecErr)
	}

	return keywordResults, vecResults, nil
}

// snippet truncates content for citation display.
func snippet(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= snippetLength {
		return content
	}
	return strings.TrimSpace(string(runes[:snippetLength])) + "…"
}

// extractiveAnswer frames the top passage as the answer when the
// generator is down.
func extractiveAnswer(src Source, languageCode string) string {
	prefix := "From your study material"
	if languageCode == "hi" {
		prefix = "आपकी पाठ्य सामग्री से"
	}
	return fmt.Sprintf("%s: %s", prefix, src.Snippet)
}
