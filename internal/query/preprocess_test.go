package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shikshalabs/prashna/internal/language"
)

// failingClassifier always errors, for exercising error propagation.
type failingClassifier struct{}

func (failingClassifier) Classify(context.Context, string) (ValidationResult, error) {
	return ValidationResult{}, errors.New("classifier exploded")
}

// =============================================================================
// Preprocess Tests
// =============================================================================

func TestPreprocessFullPipeline(t *testing.T) {
	p := NewPreprocessor()

	result, err := p.Preprocess(context.Background(), "um what is DNA", nil)
	require.NoError(t, err)

	assert.Equal(t, "um what is DNA", result.Original)
	assert.Equal(t, "um what is DNA", result.Sanitized)
	assert.Equal(t, "what is dna", result.Optimized)
	assert.Equal(t, "en", result.Language.Code)
	assert.True(t, result.Validation.IsValid)
	assert.Equal(t, TypeRetrieval, result.Validation.Type)
	assert.True(t, result.ShouldProceedToRAG)
}

func TestPreprocessHindiQuery(t *testing.T) {
	p := NewPreprocessor()

	result, err := p.Preprocess(context.Background(), "कृपया प्रकाश संश्लेषण समझाओ", nil)
	require.NoError(t, err)

	assert.Equal(t, "hi", result.Language.Code)
	assert.Equal(t, "प्रकाश संश्लेषण समझाओ", result.Optimized)
	assert.True(t, result.Validation.IsValid)
}

func TestPreprocessInvalidQueryStillReturnsFullResult(t *testing.T) {
	p := NewPreprocessor()

	result, err := p.Preprocess(context.Background(), "   ", nil)
	require.NoError(t, err)

	// Validity is recorded, not enforced: the result is complete
	assert.False(t, result.Validation.IsValid)
	assert.Equal(t, TypeInvalid, result.Validation.Type)
	assert.NotEmpty(t, result.Validation.Reason)
	assert.False(t, result.ShouldProceedToRAG)
	assert.Equal(t, "   ", result.Original)
	assert.Equal(t, "", result.Sanitized)
}

func TestPreprocessSanitizesBeforeClassification(t *testing.T) {
	p := NewPreprocessor()

	result, err := p.Preprocess(context.Background(), "<script>x</script>hello", nil)
	require.NoError(t, err)

	assert.Equal(t, "hello", result.Sanitized)
	assert.Equal(t, TypeGreeting, result.Validation.Type)
	assert.False(t, result.ShouldProceedToRAG)
}

func TestPreprocessAmbiguousDependsOnHistory(t *testing.T) {
	p := NewPreprocessor()
	ctx := context.Background()

	noHistory, err := p.Preprocess(ctx, "what about that one", nil)
	require.NoError(t, err)
	assert.Equal(t, TypeAmbiguous, noHistory.Validation.Type)
	assert.True(t, noHistory.ShouldProceedToRAG, "no history to resolve from, try the documents")

	history := []ChatMessage{{Role: "user", Content: "what is photosynthesis"}}
	withHistory, err := p.Preprocess(ctx, "what about that one", history)
	require.NoError(t, err)
	assert.False(t, withHistory.ShouldProceedToRAG, "history present, resolve conversationally")
}

func TestPreprocessGreetingSkipsRetrieval(t *testing.T) {
	p := NewPreprocessor()

	result, err := p.Preprocess(context.Background(), "namaste", nil)
	require.NoError(t, err)

	assert.Equal(t, TypeGreeting, result.Validation.Type)
	assert.False(t, result.ShouldProceedToRAG)
}

func TestPreprocessClassifierErrorPropagates(t *testing.T) {
	p := NewPreprocessor(WithClassifier(failingClassifier{}))

	_, err := p.Preprocess(context.Background(), "what is gravity", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classifier exploded")
}

func TestPreprocessCustomDetectorDefault(t *testing.T) {
	p := NewPreprocessor(WithDetector(language.NewDetector("hi")))

	// Short symbol-free text with no script signal falls back to the
	// detector's configured default
	result, err := p.Preprocess(context.Background(), "photosynthesis", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Language.Code)
}
