package embed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	prerrors "github.com/shikshalabs/prashna/internal/errors"
)

// fastRetry keeps backoff out of test runtime.
func fastRetry() prerrors.RetryConfig {
	return prerrors.RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   1.0,
	}
}

func newTestEmbedder(t *testing.T, host string) *OllamaEmbedder {
	t.Helper()
	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{
		Host:            host,
		Model:           "test-model",
		Dimensions:      3,
		SkipHealthCheck: true,
	})
	require.NoError(t, err)
	e.retry = fastRetry()
	return e
}

// =============================================================================
// OllamaEmbedder Retry Tests
// =============================================================================

func TestOllamaEmbedderRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"test-model","embeddings":[[1,0,0],[0,1,0]]}`))
	}))
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL)
	defer func() { _ = e.Close() }()

	vecs, err := e.EmbedBatch(context.Background(), []string{"acids", "bases"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Equal(t, int32(3), calls.Load(), "two failures then one success")
}

func TestOllamaEmbedderDoesNotRetryBadRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "unknown model", http.StatusBadRequest)
	}))
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL)
	defer func() { _ = e.Close() }()

	_, err := e.EmbedBatch(context.Background(), []string{"acids"})
	require.Error(t, err)
	assert.Equal(t, prerrors.ErrCodeEmbeddingFailed, prerrors.GetCode(err))
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}

func TestOllamaEmbedderGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL)
	defer func() { _ = e.Close() }()

	_, err := e.EmbedBatch(context.Background(), []string{"acids"})
	require.Error(t, err)
	assert.Equal(t, prerrors.ErrCodeModelUnavailable, prerrors.GetCode(err))
	assert.Equal(t, int32(4), calls.Load(), "initial attempt plus three retries")
}

func TestOllamaEmbedderRetriesConnectionFailures(t *testing.T) {
	// A server that is immediately closed leaves a refused port behind.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	e := newTestEmbedder(t, srv.URL)
	defer func() { _ = e.Close() }()

	_, err := e.EmbedBatch(context.Background(), []string{"acids"})
	require.Error(t, err)
	assert.True(t, prerrors.IsRetryable(err))
	assert.Equal(t, prerrors.CategoryNetwork, prerrors.GetCategory(err))
}
