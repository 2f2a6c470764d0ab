package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Compiled regex patterns for intent classification.
// Compiled at package init for performance.
var (
	// Greetings and sign-offs, English and transliterated/Devanagari Hindi
	greetingPattern = regexp.MustCompile(`(?i)^(hi|hiya|hello|hey|yo|good\s+(morning|afternoon|evening)|namaste|namaskar|thanks|thank\s+you|bye|goodbye|नमस्ते|नमस्कार|धन्यवाद)[\s!.?]*$`)

	// Simple arithmetic or unit conversions answerable without documents
	arithmeticPattern = regexp.MustCompile(`(?i)^(what\s+is\s+|how\s+much\s+is\s+)?\d+(\.\d+)?\s*[-+*/x×÷]\s*\d+(\.\d+)?\s*[?]?$`)

	// Non-academic chatter an educational assistant declines
	offTopicPattern = regexp.MustCompile(`(?i)\b(joke|weather|cricket\s+score|football\s+score|movie|song|lottery|horoscope|gossip)\b`)

	// Bare follow-ups that need conversational context to resolve
	followUpPattern = regexp.MustCompile(`(?i)^(and|also|then|so|but|what\s+about|how\s+about|why\s+not|more|again|(tell\s+me\s+)?more\s+about\s+(it|that|this|them))\b[\s\w]{0,20}[?]?$`)

	// Dangling pronouns with no other content words
	pronounOnlyPattern = regexp.MustCompile(`(?i)^(it|this|that|these|those|they|he|she)\b[\s?!.]*$`)

	// Natural-language question starters
	questionPattern = regexp.MustCompile(`(?i)^(what|how|why|where|when|which|who|can|does|do|is|are|should|explain|describe|define|compare|list|summarize)\b`)
)

// Classification confidence levels used by the pattern classifier.
const (
	patternHighConfidence   = 0.9
	patternMediumConfidence = 0.7
	patternLowConfidence    = 0.5
)

// PatternClassifier classifies query intent using regex pattern matching.
// This is the fallback classifier when the LLM is unavailable.
type PatternClassifier struct{}

// NewPatternClassifier creates a new pattern-based classifier.
func NewPatternClassifier() *PatternClassifier {
	return &PatternClassifier{}
}

// Classify determines the query type using pattern matching.
// Never returns an error.
func (p *PatternClassifier) Classify(_ context.Context, text string) (ValidationResult, error) {
	text = strings.TrimSpace(text)

	if invalid, reason := checkInvalid(text); invalid {
		return ValidationResult{
			IsValid:    false,
			Reason:     reason,
			Type:       TypeInvalid,
			Confidence: 1.0,
		}, nil
	}

	switch {
	case greetingPattern.MatchString(text):
		return valid(TypeGreeting, patternHighConfidence), nil

	case arithmeticPattern.MatchString(text):
		return valid(TypeDirectAnswer, patternHighConfidence), nil

	case offTopicPattern.MatchString(text):
		return valid(TypeOutOfScope, patternMediumConfidence), nil

	case pronounOnlyPattern.MatchString(text), followUpPattern.MatchString(text):
		return valid(TypeAmbiguous, patternMediumConfidence), nil

	case questionPattern.MatchString(text):
		return valid(TypeRetrieval, patternMediumConfidence), nil
	}

	// Anything else ("photosynthesis", topic fragments) defaults to
	// retrieval at low confidence; the documents decide.
	return valid(TypeRetrieval, patternLowConfidence), nil
}

// checkInvalid reports whether text is unusable and why.
func checkInvalid(text string) (bool, string) {
	if text == "" {
		return true, "query is empty"
	}
	if len([]rune(text)) < MinQueryLength {
		return true, fmt.Sprintf("query is too short (minimum %d characters)", MinQueryLength)
	}
	// Reject input with no letters at all (punctuation runs, lone digits
	// are allowed so arithmetic still classifies)
	hasContent := false
	for _, r := range text {
		if isLetterOrDigit(r) {
			hasContent = true
			break
		}
	}
	if !hasContent {
		return true, "query contains no readable content"
	}
	return false, ""
}

func isLetterOrDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x00FF
}

func valid(t Type, confidence float64) ValidationResult {
	return ValidationResult{IsValid: true, Type: t, Confidence: confidence}
}

// Ensure PatternClassifier implements Classifier interface.
var _ Classifier = (*PatternClassifier)(nil)
