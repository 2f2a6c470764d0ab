// Package query implements query preprocessing: sanitization, intent
// classification, language-aware optimization, and the fixed-order
// preprocessing pipeline that feeds the orchestrator.
package query

import (
	"context"

	"github.com/shikshalabs/prashna/internal/language"
)

// Type is the classified intent of a query.
type Type string

const (
	// TypeGreeting indicates a salutation answerable without retrieval.
	TypeGreeting Type = "GREETING"

	// TypeDirectAnswer indicates a simple factual question the engine can
	// answer from general knowledge without consulting documents.
	TypeDirectAnswer Type = "DIRECT_ANSWER"

	// TypeInvalid indicates unusable input (empty, too short, nonsensical).
	TypeInvalid Type = "INVALID"

	// TypeOutOfScope indicates a query unrelated to the study material.
	TypeOutOfScope Type = "OUT_OF_SCOPE"

	// TypeAmbiguous indicates a query that needs conversational context
	// to resolve (dangling pronouns, bare follow-ups).
	TypeAmbiguous Type = "AMBIGUOUS"

	// TypeRetrieval indicates a substantive question that needs documents.
	TypeRetrieval Type = "RETRIEVAL"
)

// ValidationResult is the outcome of classifying a sanitized query.
type ValidationResult struct {
	// IsValid is false only for TypeInvalid queries.
	IsValid bool `json:"isValid"`

	// Reason is a human-readable explanation, present when IsValid is false.
	Reason string `json:"reason,omitempty"`

	// Type is the classified query intent.
	Type Type `json:"type"`

	// Confidence is the classification confidence in [0,1].
	Confidence float64 `json:"confidence"`
}

// Classifier assigns a query type and confidence to sanitized text.
// Implementations may consult an LLM; they must degrade rather than fail.
type Classifier interface {
	// Classify returns a ValidationResult for the sanitized query.
	// On error, implementations should still return a usable result.
	Classify(ctx context.Context, text string) (ValidationResult, error)
}

// Result aggregates everything the preprocessing pipeline produced for one
// query. It is created once per request and immutable afterward.
type Result struct {
	// Original is the raw query text as received.
	Original string `json:"original"`

	// Sanitized is the control-character and markup stripped query.
	Sanitized string `json:"sanitized"`

	// Optimized is the filler-stripped, lower-cased, whitespace-normalized
	// query. This is the canonical cache key for the pipeline.
	Optimized string `json:"optimized"`

	// Validation is the intent classification of the sanitized query.
	Validation ValidationResult `json:"validation"`

	// Language is the detected language of the raw query.
	Language language.Info `json:"language"`

	// ShouldProceedToRAG reports whether retrieval is warranted, per the
	// decision table over (query type, has chat history).
	ShouldProceedToRAG bool `json:"shouldProceedToRAG"`
}

// ChatMessage is one turn of conversation history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ShouldProceedToRAG is the decision table mapping (query type, non-empty
// chat history) to whether retrieval should run. It is total: every type,
// known or not, has a defined outcome.
func ShouldProceedToRAG(t Type, hasHistory bool) bool {
	switch t {
	case TypeGreeting, TypeDirectAnswer:
		return false
	case TypeInvalid, TypeOutOfScope:
		return false
	case TypeAmbiguous:
		// With history the engine resolves the reference conversationally;
		// without history we still try the documents.
		return !hasHistory
	default:
		// TypeRetrieval and any future subtype default to retrieval.
		return true
	}
}
