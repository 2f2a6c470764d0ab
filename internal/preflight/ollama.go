package preflight

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ollamaCheckTimeout bounds the daemon probe; a slow daemon is as
// unusable as a missing one for interactive queries.
const ollamaCheckTimeout = 2 * time.Second

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// CheckOllamaDaemon checks whether the Ollama daemon answers.
func (c *Checker) CheckOllamaDaemon(ctx context.Context) CheckResult {
	result := CheckResult{
		Name:     "ollama_daemon",
		Required: false,
	}

	if _, err := c.listModels(ctx); err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("Ollama is not reachable at %s (answers will use fallbacks)", c.ollamaHost)
		return result
	}

	result.Status = StatusPass
	result.Message = "Ollama daemon is reachable"
	return result
}

// CheckOllamaModels checks that each configured model is pulled.
func (c *Checker) CheckOllamaModels(ctx context.Context) []CheckResult {
	available, err := c.listModels(ctx)
	if err != nil {
		// Daemon check already reported the failure
		return nil
	}

	results := make([]CheckResult, 0, len(c.models))
	for _, model := range c.models {
		result := CheckResult{
			Name:     "model_" + model,
			Required: false,
		}
		if modelPresent(available, model) {
			result.Status = StatusPass
			result.Message = fmt.Sprintf("model %s is available", model)
		} else {
			result.Status = StatusWarn
			result.Message = fmt.Sprintf("model %s is not pulled (run: ollama pull %s)", model, model)
		}
		results = append(results, result)
	}
	return results
}

func (c *Checker) listModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, ollamaCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimSuffix(c.ollamaHost, "/")+"/api/tags", nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, err
	}

	names := make([]string, len(tags.Models))
	for i, m := range tags.Models {
		names[i] = m.Name
	}
	return names, nil
}

// modelPresent matches "llama3.2:3b" against tags that may carry a
// default ":latest" suffix.
func modelPresent(available []string, model string) bool {
	for _, name := range available {
		if name == model || strings.TrimSuffix(name, ":latest") == model {
			return true
		}
	}
	return false
}
