// Package rag is the top-level query pipeline: it coordinates
// preprocessing, caching, the document-presence probe, and the decision
// engine into one ProcessQuery entry point that always returns a
// well-formed response.
package rag

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shikshalabs/prashna/internal/cache"
	"github.com/shikshalabs/prashna/internal/engine"
	"github.com/shikshalabs/prashna/internal/query"
)

// Response metadata sentinel values for non-strategy terminals.
const (
	StrategyInvalid = "INVALID"
	StrategyError   = "ERROR"

	// QueryTypeError marks responses produced by the error boundary,
	// where the real query type may never have been determined.
	QueryTypeError = "ERROR"
)

// Metadata is the response envelope: fixed tracing fields plus an open
// bag of strategy-specific entries. On JSON serialization the fixed
// keys always win over colliding Extra keys.
type Metadata struct {
	// CorrelationID identifies one request across logs and metadata.
	CorrelationID string

	// Strategy is the executed strategy tag, or INVALID / ERROR.
	Strategy string

	// Language is the detected language code.
	Language string

	// QueryType is the classified query type.
	QueryType string

	// Cached reports whether the response came from the result cache.
	Cached bool

	// Duration is the elapsed request time in milliseconds, measured
	// at the terminal that produced this response.
	Duration int64

	// Reason carries the validator's explanation on invalid responses.
	Reason string

	// Error carries the raw error message on error responses.
	Error string

	// Extra holds strategy-specific metadata merged in at
	// serialization time.
	Extra map[string]any
}

// fixedMetadataKeys are reserved; Extra entries with these names are
// dropped during serialization.
var fixedMetadataKeys = map[string]struct{}{
	"correlationId": {},
	"strategy":      {},
	"language":      {},
	"queryType":     {},
	"cached":        {},
	"duration":      {},
	"reason":        {},
	"error":         {},
}

// MarshalJSON flattens Extra into the same object as the fixed fields.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+8)
	for k, v := range m.Extra {
		if _, reserved := fixedMetadataKeys[k]; reserved {
			continue
		}
		out[k] = v
	}

	out["correlationId"] = m.CorrelationID
	out["strategy"] = m.Strategy
	out["language"] = m.Language
	out["queryType"] = m.QueryType
	out["cached"] = m.Cached
	out["duration"] = m.Duration
	if m.Reason != "" {
		out["reason"] = m.Reason
	}
	if m.Error != "" {
		out["error"] = m.Error
	}

	return json.Marshal(out)
}

// Response is the externally visible answer artifact. It is also the
// unit stored in the result cache, keyed by (optimized query,
// collection id) rather than the raw query.
type Response struct {
	Answer   string          `json:"answer"`
	Sources  []engine.Source `json:"sources"`
	Metadata Metadata        `json:"metadata"`
}

// CacheStats snapshots the three cache classes.
type CacheStats struct {
	Query     cache.Stats `json:"query"`
	Embedding cache.Stats `json:"embedding"`
	Response  cache.Stats `json:"response"`
}

// HealthStatus is the operational health record.
type HealthStatus struct {
	Status string `json:"status"`
	Cache  struct {
		QueryHitRate     float64 `json:"queryHitRate"`
		EmbeddingHitRate float64 `json:"embeddingHitRate"`
		ResponseHitRate  float64 `json:"responseHitRate"`
	} `json:"cache"`
	Timestamp time.Time `json:"timestamp"`
}

// DecisionEngine chooses and executes answer strategies. Failures from
// either method propagate to the orchestrator's error boundary.
type DecisionEngine interface {
	MakeDecision(queryType query.Type, hasDocuments bool, historyLength int, languageCode string) engine.Decision
	ExecuteStrategy(ctx context.Context, decision engine.Decision, optimizedQuery string,
		history []query.ChatMessage, collectionID string, languageCode string) (engine.StrategyResult, error)
}

var _ DecisionEngine = (*engine.Engine)(nil)

// CollectionCounter probes how many documents a collection holds. The
// probe may fail; the orchestrator treats failure as "documents exist".
type CollectionCounter interface {
	CountDocuments(ctx context.Context, collectionID string) (int, error)
}

// ResultCache memoizes full responses per (optimized query, collection).
type ResultCache interface {
	GetQueryResult(optimizedQuery, collectionID string) (*Response, bool)
	SetQueryResult(optimizedQuery, collectionID string, resp *Response)
	Stats() cache.Stats
}

// StatsFunc supplies one cache class's counters for health reporting.
type StatsFunc func() cache.Stats
