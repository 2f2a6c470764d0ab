// Package preflight validates the runtime environment before the
// pipeline starts: data directory health and Ollama reachability.
// Failures are reported, not fatal; the pipeline degrades to static
// embeddings and pattern classification when Ollama is missing.
package preflight

import "context"

// CheckStatus represents the result of a preflight check.
type CheckStatus int

const (
	// StatusPass indicates the check passed.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical problem.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON encodes the status as its string form.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// CheckResult holds the result of a single preflight check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Required bool        `json:"required"`
}

// IsCritical reports whether this is a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Checker performs environment validation checks.
type Checker struct {
	ollamaHost string
	models     []string
}

// Option configures a Checker.
type Option func(*Checker)

// WithOllama enables Ollama checks against host for the given models.
func WithOllama(host string, models ...string) Option {
	return func(c *Checker) {
		c.ollamaHost = host
		c.models = models
	}
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	c := &Checker{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs every configured check against the data directory.
func (c *Checker) RunAll(ctx context.Context, dataDir string) []CheckResult {
	results := []CheckResult{
		c.CheckDiskSpace(dataDir),
		c.CheckWritePermissions(dataDir),
	}

	if c.ollamaHost != "" {
		results = append(results, c.CheckOllamaDaemon(ctx))
		results = append(results, c.CheckOllamaModels(ctx)...)
	}

	return results
}

// SummaryStatus collapses results into one status string.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	for _, r := range results {
		if r.IsCritical() {
			return "failed"
		}
		if r.Status == StatusWarn || r.Status == StatusFail {
			hasWarnings = true
		}
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}
