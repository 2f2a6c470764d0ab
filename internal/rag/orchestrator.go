package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shikshalabs/prashna/internal/engine"
	"github.com/shikshalabs/prashna/internal/query"
	"github.com/shikshalabs/prashna/internal/store"
)

// Orchestrator is the top-level request handler. ProcessQuery always
// returns a well-formed Response: invalid input, cache hits, and
// internal failures each have their own terminal, and the error
// boundary converts panics and collaborator errors into an error
// response rather than propagating them.
type Orchestrator struct {
	preprocessor *query.Preprocessor
	engine       DecisionEngine
	probe        CollectionCounter
	results      ResultCache

	embeddingStats StatsFunc
	responseStats  StatsFunc

	logger *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithPreprocessor replaces the default preprocessing pipeline.
func WithPreprocessor(p *query.Preprocessor) OrchestratorOption {
	return func(o *Orchestrator) {
		o.preprocessor = p
	}
}

// WithResultCache replaces the default result cache.
func WithResultCache(c ResultCache) OrchestratorOption {
	return func(o *Orchestrator) {
		o.results = c
	}
}

// WithEmbeddingStats wires the embedding cache's counters into health
// reporting.
func WithEmbeddingStats(fn StatsFunc) OrchestratorOption {
	return func(o *Orchestrator) {
		o.embeddingStats = fn
	}
}

// WithResponseStats wires the response cache's counters into health
// reporting.
func WithResponseStats(fn StatsFunc) OrchestratorOption {
	return func(o *Orchestrator) {
		o.responseStats = fn
	}
}

// WithOrchestratorLogger sets the logger.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator wires the pipeline together. engine and probe are
// required; everything else has defaults.
func NewOrchestrator(eng DecisionEngine, probe CollectionCounter, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		preprocessor: query.NewPreprocessor(),
		engine:       eng,
		probe:        probe,
		results:      NewLRUResultCache(DefaultResultCacheSize),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ProcessQuery runs one query through the full pipeline. It never
// returns an error: every failure mode terminates in a Response whose
// metadata records what happened.
func (o *Orchestrator) ProcessQuery(ctx context.Context, rawQuery string, history []query.ChatMessage, collectionID string) (resp *Response) {
	correlationID := uuid.NewString()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("query processing panicked",
				"correlation_id", correlationID,
				"panic", r,
			)
			resp = o.errorResponse(correlationID, start, fmt.Errorf("panic: %v", r))
		}
	}()

	processed, err := o.process(ctx, correlationID, start, rawQuery, history, collectionID)
	if err != nil {
		o.logger.Error("query processing failed",
			"correlation_id", correlationID,
			"collection", collectionID,
			"error", err,
		)
		return o.errorResponse(correlationID, start, err)
	}
	return processed
}

func (o *Orchestrator) process(
	ctx context.Context,
	correlationID string,
	start time.Time,
	rawQuery string,
	history []query.ChatMessage,
	collectionID string,
) (*Response, error) {
	pre, err := o.preprocessor.Preprocess(ctx, rawQuery, history)
	if err != nil {
		return nil, err
	}

	langCode := pre.Language.Code
	queryType := string(pre.Validation.Type)

	// Rejected input never touches the cache or the engine.
	if !pre.Validation.IsValid {
		o.logger.Info("query rejected",
			"correlation_id", correlationID,
			"reason", pre.Validation.Reason,
		)
		return &Response{
			Answer:  messageFor(invalidMessages, langCode),
			Sources: []engine.Source{},
			Metadata: Metadata{
				CorrelationID: correlationID,
				Strategy:      StrategyInvalid,
				Language:      langCode,
				QueryType:     queryType,
				Cached:        false,
				Duration:      time.Since(start).Milliseconds(),
				Reason:        pre.Validation.Reason,
			},
		}, nil
	}

	if cached, ok := o.results.GetQueryResult(pre.Optimized, collectionID); ok {
		o.logger.Debug("cache hit",
			"correlation_id", correlationID,
			"optimized_query", pre.Optimized,
		)
		// Reuse everything from the stored entry except the per-request
		// tracing fields. Copy so the cached entry stays untouched.
		hit := *cached
		hit.Metadata.CorrelationID = correlationID
		hit.Metadata.Cached = true
		hit.Metadata.Duration = time.Since(start).Milliseconds()
		return &hit, nil
	}

	// A failed probe must not fail the request: assume documents exist
	// so retrieval strategies stay reachable.
	hasDocuments := true
	if count, probeErr := o.probe.CountDocuments(ctx, collectionID); probeErr != nil {
		o.logger.Warn("document probe failed, assuming documents exist",
			"correlation_id", correlationID,
			"collection", collectionID,
			"error", probeErr,
		)
	} else {
		hasDocuments = count > 0
	}

	decision := o.engine.MakeDecision(pre.Validation.Type, hasDocuments, len(history), langCode)

	result, err := o.engine.ExecuteStrategy(ctx, decision, pre.Optimized, history, collectionID, langCode)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Answer:  result.Answer,
		Sources: result.Sources,
		Metadata: Metadata{
			CorrelationID: correlationID,
			Strategy:      decision.Strategy,
			Language:      langCode,
			QueryType:     queryType,
			Cached:        false,
			Duration:      time.Since(start).Milliseconds(),
			Extra:         result.Metadata,
		},
	}
	if resp.Sources == nil {
		resp.Sources = []engine.Source{}
	}

	o.results.SetQueryResult(pre.Optimized, collectionID, resp)

	o.logger.Info("query answered",
		"correlation_id", correlationID,
		"strategy", decision.Strategy,
		"query_type", queryType,
		"language", langCode,
		"sources", len(resp.Sources),
		"duration_ms", resp.Metadata.Duration,
	)
	return resp, nil
}

// errorResponse is the catch-all terminal. The message defaults to
// English because detection itself may be what failed.
func (o *Orchestrator) errorResponse(correlationID string, start time.Time, err error) *Response {
	return &Response{
		Answer:  messageFor(errorMessages, "en"),
		Sources: []engine.Source{},
		Metadata: Metadata{
			CorrelationID: correlationID,
			Strategy:      StrategyError,
			Language:      "en",
			QueryType:     QueryTypeError,
			Cached:        false,
			Duration:      time.Since(start).Milliseconds(),
			Error:         err.Error(),
		},
	}
}

// CacheStats snapshots all three cache classes. Classes without a
// wired source report zero counters.
func (o *Orchestrator) CacheStats() CacheStats {
	stats := CacheStats{Query: o.results.Stats()}
	if o.embeddingStats != nil {
		stats.Embedding = o.embeddingStats()
	}
	if o.responseStats != nil {
		stats.Response = o.responseStats()
	}
	return stats
}

// GetHealthStatus reports operational health with per-class cache hit
// rates.
func (o *Orchestrator) GetHealthStatus() HealthStatus {
	stats := o.CacheStats()

	var health HealthStatus
	health.Status = "operational"
	health.Cache.QueryHitRate = stats.Query.HitRate()
	health.Cache.EmbeddingHitRate = stats.Embedding.HitRate()
	health.Cache.ResponseHitRate = stats.Response.HitRate()
	health.Timestamp = time.Now().UTC()
	return health
}

// StoreProbe adapts a document store into the orchestrator's
// collection probe.
type StoreProbe struct {
	store *store.Store
}

// NewStoreProbe wraps s as a CollectionCounter.
func NewStoreProbe(s *store.Store) *StoreProbe {
	return &StoreProbe{store: s}
}

var _ CollectionCounter = (*StoreProbe)(nil)

// CountDocuments opens the collection if needed and counts its
// documents.
func (p *StoreProbe) CountDocuments(ctx context.Context, collectionID string) (int, error) {
	c, err := p.store.InitCollection(collectionID)
	if err != nil {
		return 0, err
	}
	return c.Count(ctx)
}
