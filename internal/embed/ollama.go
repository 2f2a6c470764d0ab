package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	prerrors "github.com/shikshalabs/prashna/internal/errors"
)

// Ollama defaults.
const (
	DefaultOllamaHost  = "http://localhost:11434"
	DefaultOllamaModel = "embeddinggemma"

	// ollamaPoolSize bounds idle connections to the local Ollama daemon.
	ollamaPoolSize = 4
)

// OllamaConfig configures the Ollama embedder.
type OllamaConfig struct {
	// Host is the Ollama API base URL.
	Host string

	// Model is the embedding model name.
	Model string

	// Dimensions is the expected embedding size; 0 means detect from
	// the first embedding.
	Dimensions int

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// SkipHealthCheck skips the startup reachability probe (tests).
	SkipHealthCheck bool
}

// OllamaEmbedder generates embeddings using Ollama's HTTP API.
type OllamaEmbedder struct {
	client    *http.Client
	transport *http.Transport
	config    OllamaConfig
	retry     prerrors.RetryConfig
	dims      int

	mu     sync.RWMutex
	closed bool
}

var _ Embedder = (*OllamaEmbedder)(nil)

// embedRequest is the Ollama /api/embed request body.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the Ollama /api/embed response body.
type embedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

// NewOllamaEmbedder creates an Ollama-backed embedder. Unless
// SkipHealthCheck is set, it verifies the daemon is reachable and
// detects embedding dimensions from a probe request.
func NewOllamaEmbedder(ctx context.Context, cfg OllamaConfig) (*OllamaEmbedder, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:        ollamaPoolSize,
		MaxIdleConnsPerHost: ollamaPoolSize,
		IdleConnTimeout:     10 * time.Second,
	}

	e := &OllamaEmbedder{
		client:    &http.Client{Transport: transport, Timeout: cfg.Timeout},
		transport: transport,
		config:    cfg,
		retry:     prerrors.DefaultRetryConfig(),
		dims:      cfg.Dimensions,
	}

	if !cfg.SkipHealthCheck {
		checkCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()

		if !e.Available(checkCtx) {
			transport.CloseIdleConnections()
			return nil, prerrors.New(prerrors.ErrCodeNetworkUnavailable,
				fmt.Sprintf("ollama not reachable at %s", cfg.Host), nil)
		}

		if e.dims == 0 {
			dims, err := e.detectDimensions(checkCtx)
			if err != nil {
				transport.CloseIdleConnections()
				return nil, err
			}
			e.dims = dims
		}
	}

	if e.dims == 0 {
		e.dims = DefaultDimensions
	}

	return e, nil
}

// Embed generates an embedding for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, prerrors.New(prerrors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("expected 1 embedding, got %d", len(vecs)), nil)
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, prerrors.InternalError("embedder is closed", nil)
	}
	e.mu.RUnlock()

	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	body, err := json.Marshal(embedRequest{Model: e.config.Model, Input: texts})
	if err != nil {
		return nil, prerrors.InternalError("marshal embed request", err)
	}

	// Transient daemon hiccups are retried with backoff; semantic
	// failures (bad request, malformed response) surface immediately.
	var vecs [][]float32
	err = prerrors.RetryIfRetryable(ctx, e.retry, func() error {
		var attemptErr error
		vecs, attemptErr = e.embedOnce(ctx, body, len(texts))
		return attemptErr
	})
	if err != nil {
		return nil, err
	}
	return vecs, nil
}

// embedOnce performs a single embed round-trip.
func (e *OllamaEmbedder) embedOnce(ctx context.Context, body []byte, want int) ([][]float32, error) {
	url := e.config.Host + "/api/embed"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, prerrors.InternalError("create embed request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, prerrors.NetworkError("embedding request failed", err).
			WithDetail("host", e.config.Host)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		code := prerrors.ErrCodeEmbeddingFailed
		if resp.StatusCode >= http.StatusInternalServerError {
			code = prerrors.ErrCodeModelUnavailable
		}
		return nil, prerrors.New(code,
			fmt.Sprintf("ollama returned status %d: %s", resp.StatusCode, string(respBody)), nil).
			WithDetail("model", e.config.Model)
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, prerrors.New(prerrors.ErrCodeEmbeddingFailed, "decode embed response", err)
	}

	if len(result.Embeddings) != want {
		return nil, prerrors.New(prerrors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("expected %d embeddings, got %d", want, len(result.Embeddings)), nil)
	}

	for i, vec := range result.Embeddings {
		result.Embeddings[i] = normalizeVector(vec)
	}
	return result.Embeddings, nil
}

// detectDimensions probes the model with a short input.
func (e *OllamaEmbedder) detectDimensions(ctx context.Context) (int, error) {
	vec, err := e.Embed(ctx, "probe")
	if err != nil {
		return 0, err
	}
	return len(vec), nil
}

// Dimensions returns the embedding dimension.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dims
}

// ModelName returns the model identifier.
func (e *OllamaEmbedder) ModelName() string {
	return e.config.Model
}

// Available checks if the Ollama daemon responds to /api/tags.
func (e *OllamaEmbedder) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.config.Host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// Close releases idle connections. Safe to call more than once.
func (e *OllamaEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.transport.CloseIdleConnections()
	return nil
}
