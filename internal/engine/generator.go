package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	prerrors "github.com/shikshalabs/prashna/internal/errors"
	"github.com/shikshalabs/prashna/internal/query"
)

// Generator produces answer text from a prompt. Implemented by the
// Ollama client; swapped for a fake in tests.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OllamaGenerator calls the Ollama generate API for answer synthesis.
type OllamaGenerator struct {
	client *http.Client
	host   string
	model  string
	retry  prerrors.RetryConfig
}

var _ Generator = (*OllamaGenerator)(nil)

// NewOllamaGenerator creates a generator against the given host/model.
func NewOllamaGenerator(host, model string, timeout time.Duration) *OllamaGenerator {
	if host == "" {
		host = "http://localhost:11434"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OllamaGenerator{
		client: &http.Client{Timeout: timeout},
		host:   host,
		model:  model,
		retry:  prerrors.DefaultRetryConfig(),
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate runs a non-streaming generation call, retrying transient
// daemon failures with backoff.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", prerrors.InternalError("marshal generate request", err)
	}

	var answer string
	err = prerrors.RetryIfRetryable(ctx, g.retry, func() error {
		var attemptErr error
		answer, attemptErr = g.generateOnce(ctx, body)
		return attemptErr
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}

// generateOnce performs a single generate round-trip.
func (g *OllamaGenerator) generateOnce(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", prerrors.InternalError("create generate request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", prerrors.NetworkError("generation request failed", err).
			WithDetail("host", g.host)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		code := prerrors.ErrCodeGenerationFailed
		if resp.StatusCode >= http.StatusInternalServerError {
			code = prerrors.ErrCodeModelUnavailable
		}
		return "", prerrors.New(code,
			fmt.Sprintf("ollama returned status %d: %s", resp.StatusCode, string(respBody)), nil).
			WithDetail("model", g.model)
	}

	var result ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", prerrors.New(prerrors.ErrCodeGenerationFailed,
			"decode generate response", err)
	}

	answer := strings.TrimSpace(result.Response)
	if answer == "" {
		return "", prerrors.New(prerrors.ErrCodeGenerationFailed,
			"model returned an empty answer", nil)
	}
	return answer, nil
}

// buildRetrievalPrompt assembles the grounded generation prompt from
// retrieved passages and recent conversation turns.
func buildRetrievalPrompt(question string, passages []string, history []query.ChatMessage, languageCode string) string {
	var b strings.Builder

	b.WriteString("You are a patient study tutor. Answer the student's question using ONLY the study material below. If the material does not contain the answer, say so briefly.\n")
	if languageCode == "hi" {
		b.WriteString("Answer in Hindi.\n")
	}
	b.WriteString("\nStudy material:\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, p)
	}

	if len(history) > 0 {
		b.WriteString("\nRecent conversation:\n")
		// Last few turns are enough context
		start := len(history) - 4
		if start < 0 {
			start = 0
		}
		for _, msg := range history[start:] {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
	}

	fmt.Fprintf(&b, "\nQuestion: %s\n\nAnswer:", question)
	return b.String()
}

// buildDirectPrompt asks for a short answer from general knowledge.
func buildDirectPrompt(question string, languageCode string) string {
	var b strings.Builder
	b.WriteString("You are a study tutor. Answer the student's question briefly and accurately from general knowledge.\n")
	if languageCode == "hi" {
		b.WriteString("Answer in Hindi.\n")
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n\nAnswer:", question)
	return b.String()
}
