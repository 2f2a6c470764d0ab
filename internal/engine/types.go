// Package engine decides how a classified query should be answered and
// executes the chosen strategy: templated replies, direct LLM answers,
// or hybrid retrieval (BM25 + vector search fused with RRF) feeding a
// grounded generation prompt.
package engine

import (
	"time"

	"github.com/shikshalabs/prashna/internal/query"
)

// Strategy names. These appear verbatim in response metadata.
const (
	StrategyGreeting           = "greeting"
	StrategyDirectAnswer       = "direct_answer"
	StrategyClarification      = "clarification"
	StrategyOutOfScope         = "out_of_scope"
	StrategyRetrievalAugmented = "retrieval_augmented"
	StrategyGeneralKnowledge   = "general_knowledge"
)

// Decision is the engine's choice of answering strategy.
type Decision struct {
	// Strategy is one of the Strategy* constants.
	Strategy string `json:"strategy"`

	// Confidence is the decision confidence in [0,1].
	Confidence float64 `json:"confidence"`
}

// Source is one citation backing an answer.
type Source struct {
	// DocumentID identifies the cited document.
	DocumentID string `json:"documentId"`

	// Snippet is an excerpt of the cited content.
	Snippet string `json:"snippet"`

	// Reference describes where the content came from (chapter, page).
	Reference string `json:"reference,omitempty"`

	// Score is the fused relevance score in [0,1].
	Score float64 `json:"score"`
}

// StrategyResult is the outcome of executing a Decision.
type StrategyResult struct {
	// Answer is the generated or templated answer text.
	Answer string

	// Sources are citations, ordered by relevance. Empty for
	// non-retrieval strategies.
	Sources []Source

	// Metadata holds strategy-specific fields merged into the final
	// response metadata.
	Metadata map[string]any
}

// Weights balance keyword and semantic contributions during fusion.
type Weights struct {
	Keyword  float64
	Semantic float64
}

// Config holds the engine's tunables.
type Config struct {
	// GeneratorModel is the Ollama model used for answer synthesis.
	GeneratorModel string

	// OllamaHost is the Ollama API base URL.
	OllamaHost string

	// GenerateTimeout bounds one generation call.
	GenerateTimeout time.Duration

	// Weights balance keyword vs semantic retrieval.
	Weights Weights

	// RRFConstant is the fusion smoothing parameter.
	RRFConstant int

	// MaxSources caps the citations attached to an answer.
	MaxSources int
}

// DefaultConfig returns the engine defaults. The 0.35/0.65 split
// favors semantic recall for natural-language questions while keeping
// exact term matches competitive.
func DefaultConfig() Config {
	return Config{
		GeneratorModel:  "llama3.2:3b",
		OllamaHost:      "http://localhost:11434",
		GenerateTimeout: 30 * time.Second,
		Weights:         Weights{Keyword: 0.35, Semantic: 0.65},
		RRFConstant:     DefaultRRFConstant,
		MaxSources:      5,
	}
}

// MakeDecision maps the classified query and corpus state to a
// strategy. It is a pure rule table with no I/O; every input
// combination yields a defined Decision.
func MakeDecision(queryType query.Type, hasDocuments bool, historyLength int, languageCode string) Decision {
	switch queryType {
	case query.TypeGreeting:
		return Decision{Strategy: StrategyGreeting, Confidence: 1.0}

	case query.TypeDirectAnswer:
		return Decision{Strategy: StrategyDirectAnswer, Confidence: 0.9}

	case query.TypeOutOfScope:
		return Decision{Strategy: StrategyOutOfScope, Confidence: 0.9}

	case query.TypeAmbiguous:
		if historyLength > 0 {
			// Resolve the reference from conversation, no retrieval
			return Decision{Strategy: StrategyClarification, Confidence: 0.8}
		}
		if hasDocuments {
			return Decision{Strategy: StrategyRetrievalAugmented, Confidence: 0.6}
		}
		return Decision{Strategy: StrategyClarification, Confidence: 0.7}

	case query.TypeInvalid:
		// The orchestrator short-circuits invalid queries; reaching here
		// still yields a safe strategy
		return Decision{Strategy: StrategyClarification, Confidence: 0.5}

	default:
		// TypeRetrieval and any future subtype
		if hasDocuments {
			return Decision{Strategy: StrategyRetrievalAugmented, Confidence: 0.9}
		}
		return Decision{Strategy: StrategyGeneralKnowledge, Confidence: 0.7}
	}
}
