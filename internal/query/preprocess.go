package query

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/shikshalabs/prashna/internal/language"
)

// Preprocessor runs the fixed query preprocessing sequence: language
// detection and sanitization (independent, run concurrently), then
// classification of the sanitized text, then optimization using the
// detected language. It always produces a complete Result; validity is
// recorded, not enforced, so the caller owns the short-circuit.
type Preprocessor struct {
	detector   *language.Detector
	classifier Classifier
	logger     *slog.Logger
}

// PreprocessorOption configures a Preprocessor.
type PreprocessorOption func(*Preprocessor)

// WithClassifier sets a custom classifier.
func WithClassifier(c Classifier) PreprocessorOption {
	return func(p *Preprocessor) {
		p.classifier = c
	}
}

// WithDetector sets a custom language detector.
func WithDetector(d *language.Detector) PreprocessorOption {
	return func(p *Preprocessor) {
		p.detector = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PreprocessorOption {
	return func(p *Preprocessor) {
		p.logger = logger
	}
}

// NewPreprocessor creates a preprocessor with pattern-only
// classification and an English-default detector unless overridden.
func NewPreprocessor(opts ...PreprocessorOption) *Preprocessor {
	p := &Preprocessor{
		detector:   language.NewDetector(DefaultLanguageCode),
		classifier: NewPatternClassifier(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Preprocess runs the full pipeline over a raw query. Language
// detection sees the raw text (markup can carry script information the
// sanitizer would strip); classification and optimization see the
// sanitized text. Errors are only returned for classifier failures,
// never for bad input, which is reported through Result.Validation.
func (p *Preprocessor) Preprocess(ctx context.Context, raw string, history []ChatMessage) (Result, error) {
	var (
		langInfo  language.Info
		sanitized string
	)

	// Detection and sanitization are independent of each other
	var g errgroup.Group
	g.Go(func() error {
		langInfo = p.detector.Detect(raw)
		return nil
	})
	g.Go(func() error {
		sanitized = Sanitize(raw)
		return nil
	})
	_ = g.Wait()

	validation, err := p.classifier.Classify(ctx, sanitized)
	if err != nil {
		return Result{}, err
	}

	optimized := Optimize(sanitized, langInfo.Code)

	result := Result{
		Original:           raw,
		Sanitized:          sanitized,
		Optimized:          optimized,
		Validation:         validation,
		Language:           langInfo,
		ShouldProceedToRAG: ShouldProceedToRAG(validation.Type, len(history) > 0),
	}

	p.logger.Debug("query preprocessed",
		"language", langInfo.Code,
		"query_type", string(validation.Type),
		"confidence", validation.Confidence,
		"valid", validation.IsValid,
		"proceed_to_rag", result.ShouldProceedToRAG,
	)

	return result, nil
}
