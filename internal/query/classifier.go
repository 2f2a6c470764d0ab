package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Default classifier configuration values.
const (
	DefaultClassifierModel     = "llama3.2:1b"
	DefaultClassifierTimeout   = 2 * time.Second
	DefaultClassifierCacheSize = 10000
	DefaultOllamaHost          = "http://localhost:11434"
)

// ClassifierConfig holds configuration for the query classifier.
type ClassifierConfig struct {
	// Model is the Ollama model to use for classification.
	Model string

	// Timeout is the maximum time to wait for LLM response.
	Timeout time.Duration

	// CacheSize is the LRU cache size for classification results.
	CacheSize int

	// OllamaHost is the Ollama API base URL.
	OllamaHost string
}

// DefaultClassifierConfig returns sensible defaults for the classifier.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Model:      DefaultClassifierModel,
		Timeout:    DefaultClassifierTimeout,
		CacheSize:  DefaultClassifierCacheSize,
		OllamaHost: DefaultOllamaHost,
	}
}

// HybridClassifier tries LLM classification first, falls back to patterns.
// Results are cached in an LRU cache keyed by the normalized query.
type HybridClassifier struct {
	llm      *LLMClassifier
	patterns *PatternClassifier
	cache    *lru.Cache[string, ValidationResult]
}

// NewHybridClassifier creates a classifier that tries LLM first, then
// patterns. If llm is nil, only pattern-based classification is used.
func NewHybridClassifier(llm *LLMClassifier) *HybridClassifier {
	cache, _ := lru.New[string, ValidationResult](DefaultClassifierCacheSize)
	return &HybridClassifier{
		llm:      llm,
		patterns: NewPatternClassifier(),
		cache:    cache,
	}
}

// NewHybridClassifierWithConfig creates a classifier with custom configuration.
func NewHybridClassifierWithConfig(llm *LLMClassifier, config ClassifierConfig) *HybridClassifier {
	cacheSize := config.CacheSize
	if cacheSize <= 0 {
		cacheSize = DefaultClassifierCacheSize
	}
	cache, _ := lru.New[string, ValidationResult](cacheSize)
	return &HybridClassifier{
		llm:      llm,
		patterns: NewPatternClassifier(),
		cache:    cache,
	}
}

// Classify determines the query intent. Invalid input is decided locally
// without an LLM round trip; other queries use cache, then LLM, then the
// pattern fallback. Never returns an error alongside an unusable result.
func (h *HybridClassifier) Classify(ctx context.Context, text string) (ValidationResult, error) {
	// Invalidity is structural, not semantic: decide it here
	if invalid, reason := checkInvalid(strings.TrimSpace(text)); invalid {
		return ValidationResult{
			IsValid:    false,
			Reason:     reason,
			Type:       TypeInvalid,
			Confidence: 1.0,
		}, nil
	}

	cacheKey := strings.ToLower(strings.TrimSpace(text))
	if result, ok := h.cache.Get(cacheKey); ok {
		return result, nil
	}

	if h.llm != nil {
		result, err := h.llm.Classify(ctx, text)
		if err == nil {
			h.cache.Add(cacheKey, result)
			return result, nil
		}
		// LLM failed, fall through to patterns
	}

	result, err := h.patterns.Classify(ctx, text)
	if err == nil {
		h.cache.Add(cacheKey, result)
	}
	return result, err
}

// Ensure HybridClassifier implements Classifier interface.
var _ Classifier = (*HybridClassifier)(nil)

// =============================================================================
// LLMClassifier
// =============================================================================

// LLMClassifier uses an Ollama model for query intent classification.
type LLMClassifier struct {
	client *http.Client
	config ClassifierConfig
	prompt string
}

// generateRequest is the Ollama /api/generate request body.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the Ollama /api/generate response body.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewLLMClassifier creates a new LLM-based classifier.
func NewLLMClassifier(config ClassifierConfig) *LLMClassifier {
	if config.Model == "" {
		config.Model = DefaultClassifierModel
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultClassifierTimeout
	}
	if config.OllamaHost == "" {
		config.OllamaHost = DefaultOllamaHost
	}

	return &LLMClassifier{
		client: &http.Client{Timeout: config.Timeout},
		config: config,
		prompt: intentPrompt,
	}
}

// intentPrompt is the prompt template for intent classification.
const intentPrompt = `You are a query intent classifier for an educational study assistant. Classify the given student query into exactly ONE of these categories:

GREETING - A salutation or sign-off. Examples: "hello", "namaste", "thanks, bye"

DIRECT_ANSWER - A trivial factual or arithmetic question answerable without study material. Examples: "what is 2+2", "how many days in a week"

OUT_OF_SCOPE - Unrelated to studying. Examples: "tell me a joke", "what's the weather"

AMBIGUOUS - Needs conversation context to resolve. Examples: "what about that one", "explain it again"

RETRIEVAL - A substantive academic question that needs the study documents. Examples: "what is photosynthesis", "explain Newton's second law"

Respond with ONLY one word: GREETING, DIRECT_ANSWER, OUT_OF_SCOPE, AMBIGUOUS, or RETRIEVAL.

Query: %s

Classification:`

// Classify uses the Ollama generate API to classify the query.
func (l *LLMClassifier) Classify(ctx context.Context, text string) (ValidationResult, error) {
	fallback := valid(TypeRetrieval, patternLowConfidence)

	text = strings.TrimSpace(text)
	if text == "" {
		return ValidationResult{
			IsValid: false, Reason: "query is empty", Type: TypeInvalid, Confidence: 1.0,
		}, nil
	}

	reqBody := generateRequest{
		Model:  l.config.Model,
		Prompt: fmt.Sprintf(l.prompt, text),
		Stream: false,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fallback, fmt.Errorf("marshal request: %w", err)
	}

	url := l.config.OllamaHost + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fallback, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return fallback, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fallback, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fallback, fmt.Errorf("decode response: %w", err)
	}

	return parseIntentResponse(result.Response), nil
}

// parseIntentResponse extracts the query type from the LLM response.
func parseIntentResponse(response string) ValidationResult {
	response = strings.ToUpper(strings.TrimSpace(response))

	// Exact match first, then containment for chatty models
	for _, t := range []Type{TypeGreeting, TypeDirectAnswer, TypeOutOfScope, TypeAmbiguous, TypeRetrieval} {
		if response == string(t) {
			return valid(t, patternHighConfidence)
		}
	}
	for _, t := range []Type{TypeGreeting, TypeDirectAnswer, TypeOutOfScope, TypeAmbiguous, TypeRetrieval} {
		if strings.Contains(response, string(t)) {
			return valid(t, patternMediumConfidence)
		}
	}

	// Unparseable response defaults to retrieval
	return valid(TypeRetrieval, patternLowConfidence)
}

// Available checks if Ollama is reachable.
func (l *LLMClassifier) Available(ctx context.Context) bool {
	url := l.config.OllamaHost + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}
