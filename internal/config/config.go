// Package config loads and validates Prashna configuration.
// Precedence: built-in defaults < .prashna.yaml in the data dir < env vars.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Prashna configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Language   LanguageConfig   `yaml:"language" json:"language"`
	Classifier ClassifierConfig `yaml:"classifier" json:"classifier"`
	Engine     EngineConfig     `yaml:"engine" json:"engine"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	Store      StoreConfig      `yaml:"store" json:"store"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// LanguageConfig configures language detection and localization.
type LanguageConfig struct {
	// Default is the fallback language code when detection is inconclusive.
	Default string `yaml:"default" json:"default"`
}

// ClassifierConfig configures the query intent classifier.
type ClassifierConfig struct {
	// Model is the Ollama model used for LLM classification.
	Model string `yaml:"model" json:"model"`

	// OllamaHost is the Ollama API base URL.
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`

	// Timeout is the maximum time to wait for an LLM classification.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// CacheSize is the LRU cache size for classification results.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// EngineConfig configures the decision/execution engine.
type EngineConfig struct {
	// GeneratorModel is the Ollama model used for answer synthesis.
	GeneratorModel string `yaml:"generator_model" json:"generator_model"`

	// KeywordWeight is the weight for keyword retrieval (0.0-1.0).
	// Must sum to 1.0 with SemanticWeight.
	KeywordWeight float64 `yaml:"keyword_weight" json:"keyword_weight"`

	// SemanticWeight is the weight for vector retrieval (0.0-1.0).
	SemanticWeight float64 `yaml:"semantic_weight" json:"semantic_weight"`

	// RRFConstant is the RRF fusion smoothing parameter (k).
	// Default: 60 (industry standard).
	RRFConstant int `yaml:"rrf_constant" json:"rrf_constant"`

	// MaxSources is the maximum number of source citations per answer.
	MaxSources int `yaml:"max_sources" json:"max_sources"`

	// GenerateTimeout is the maximum time to wait for answer synthesis.
	GenerateTimeout time.Duration `yaml:"generate_timeout" json:"generate_timeout"`
}

// EmbeddingsConfig configures the query/document embedder.
type EmbeddingsConfig struct {
	// Provider selects the embedding backend: "ollama" or "static".
	Provider string `yaml:"provider" json:"provider"`

	// Model is the Ollama embedding model name.
	Model string `yaml:"model" json:"model"`

	// OllamaHost is the Ollama API endpoint.
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`

	// Dimensions is the embedding dimension (0 = backend default).
	Dimensions int `yaml:"dimensions" json:"dimensions"`

	// Timeout is the per-request embedding timeout.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// CacheConfig configures the result cache sizes per class.
type CacheConfig struct {
	// QuerySize is the LRU capacity for classified-query entries.
	QuerySize int `yaml:"query_size" json:"query_size"`

	// EmbeddingSize is the LRU capacity for cached query embeddings.
	EmbeddingSize int `yaml:"embedding_size" json:"embedding_size"`

	// ResponseSize is the LRU capacity for full assembled responses.
	ResponseSize int `yaml:"response_size" json:"response_size"`
}

// StoreConfig configures the document store.
type StoreConfig struct {
	// DataDir is the root directory for collection data.
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Language: LanguageConfig{
			Default: "en",
		},
		Classifier: ClassifierConfig{
			Model:      "llama3.2:1b",
			OllamaHost: "http://localhost:11434",
			Timeout:    2 * time.Second,
			CacheSize:  10000,
		},
		Engine: EngineConfig{
			GeneratorModel:  "llama3.2:3b",
			KeywordWeight:   0.35,
			SemanticWeight:  0.65,
			RRFConstant:     60,
			MaxSources:      5,
			GenerateTimeout: 60 * time.Second,
		},
		Embeddings: EmbeddingsConfig{
			Provider:   "ollama",
			Model:      "embeddinggemma",
			OllamaHost: "http://localhost:11434",
			Timeout:    60 * time.Second,
		},
		Cache: CacheConfig{
			QuerySize:     10000,
			EmbeddingSize: 1000,
			ResponseSize:  1000,
		},
		Store: StoreConfig{
			DataDir: defaultDataDir(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".prashna")
	}
	return filepath.Join(home, ".prashna")
}

// Load reads configuration from dir/.prashna.yaml (or .yml), merges it over
// defaults, applies environment overrides, and validates the result.
// A missing config file is not an error.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .prashna.yaml or .prashna.yml.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".prashna.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".prashna.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	// No config file is fine - use defaults
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.Language.Default != "" {
		c.Language.Default = other.Language.Default
	}

	if other.Classifier.Model != "" {
		c.Classifier.Model = other.Classifier.Model
	}
	if other.Classifier.OllamaHost != "" {
		c.Classifier.OllamaHost = other.Classifier.OllamaHost
	}
	if other.Classifier.Timeout > 0 {
		c.Classifier.Timeout = other.Classifier.Timeout
	}
	if other.Classifier.CacheSize > 0 {
		c.Classifier.CacheSize = other.Classifier.CacheSize
	}

	if other.Engine.GeneratorModel != "" {
		c.Engine.GeneratorModel = other.Engine.GeneratorModel
	}
	if other.Engine.KeywordWeight > 0 || other.Engine.SemanticWeight > 0 {
		c.Engine.KeywordWeight = other.Engine.KeywordWeight
		c.Engine.SemanticWeight = other.Engine.SemanticWeight
	}
	if other.Engine.RRFConstant > 0 {
		c.Engine.RRFConstant = other.Engine.RRFConstant
	}
	if other.Engine.MaxSources > 0 {
		c.Engine.MaxSources = other.Engine.MaxSources
	}
	if other.Engine.GenerateTimeout > 0 {
		c.Engine.GenerateTimeout = other.Engine.GenerateTimeout
	}

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.OllamaHost != "" {
		c.Embeddings.OllamaHost = other.Embeddings.OllamaHost
	}
	if other.Embeddings.Dimensions > 0 {
		c.Embeddings.Dimensions = other.Embeddings.Dimensions
	}
	if other.Embeddings.Timeout > 0 {
		c.Embeddings.Timeout = other.Embeddings.Timeout
	}

	if other.Cache.QuerySize > 0 {
		c.Cache.QuerySize = other.Cache.QuerySize
	}
	if other.Cache.EmbeddingSize > 0 {
		c.Cache.EmbeddingSize = other.Cache.EmbeddingSize
	}
	if other.Cache.ResponseSize > 0 {
		c.Cache.ResponseSize = other.Cache.ResponseSize
	}

	if other.Store.DataDir != "" {
		c.Store.DataDir = other.Store.DataDir
	}
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
}

// applyEnvOverrides applies PRASHNA_* environment variables (highest precedence).
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PRASHNA_DEFAULT_LANGUAGE"); v != "" {
		c.Language.Default = v
	}
	if v := os.Getenv("PRASHNA_OLLAMA_HOST"); v != "" {
		c.Classifier.OllamaHost = v
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("PRASHNA_CLASSIFIER_MODEL"); v != "" {
		c.Classifier.Model = v
	}
	if v := os.Getenv("PRASHNA_GENERATOR_MODEL"); v != "" {
		c.Engine.GeneratorModel = v
	}
	if v := os.Getenv("PRASHNA_KEYWORD_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Engine.KeywordWeight = f
		}
	}
	if v := os.Getenv("PRASHNA_SEMANTIC_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Engine.SemanticWeight = f
		}
	}
	if v := os.Getenv("PRASHNA_RRF_CONSTANT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.RRFConstant = n
		}
	}
	if v := os.Getenv("PRASHNA_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("PRASHNA_DATA_DIR"); v != "" {
		c.Store.DataDir = v
	}
	if v := os.Getenv("PRASHNA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the final configuration for consistency.
func (c *Config) Validate() error {
	if c.Engine.KeywordWeight < 0 || c.Engine.KeywordWeight > 1 {
		return fmt.Errorf("keyword_weight must be between 0 and 1, got %f", c.Engine.KeywordWeight)
	}
	if c.Engine.SemanticWeight < 0 || c.Engine.SemanticWeight > 1 {
		return fmt.Errorf("semantic_weight must be between 0 and 1, got %f", c.Engine.SemanticWeight)
	}

	sum := c.Engine.KeywordWeight + c.Engine.SemanticWeight
	if math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("keyword_weight + semantic_weight must equal 1.0, got %.2f", sum)
	}

	if c.Embeddings.Provider != "" {
		validProviders := map[string]bool{"ollama": true, "static": true}
		if !validProviders[strings.ToLower(c.Embeddings.Provider)] {
			return fmt.Errorf("embeddings.provider must be 'ollama' or 'static', got %s", c.Embeddings.Provider)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
