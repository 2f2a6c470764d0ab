// Package language provides lightweight language identification for queries.
// Detection is script-based for Indic languages with a stop-word heuristic
// for Latin text. It is a total function: inconclusive input falls back to
// the configured default language with low confidence, never an error.
package language

import (
	"strings"
	"unicode"
)

// Info describes the detected language of a query.
type Info struct {
	// Language is the human-readable name (e.g., "Hindi").
	Language string `json:"language"`

	// Code is the ISO 639-1 style short code (e.g., "hi").
	Code string `json:"languageCode"`

	// Confidence is the detection confidence in [0,1].
	Confidence float64 `json:"confidence"`
}

// Supported language codes.
const (
	CodeEnglish = "en"
	CodeHindi   = "hi"
	CodeBengali = "bn"
	CodeTamil   = "ta"
	CodeTelugu  = "te"
)

// names maps language codes to human-readable names.
var names = map[string]string{
	CodeEnglish: "English",
	CodeHindi:   "Hindi",
	CodeBengali: "Bengali",
	CodeTamil:   "Tamil",
	CodeTelugu:  "Telugu",
}

// scriptRanges maps Unicode ranges to language codes.
// Devanagari maps to Hindi; Marathi shares the script and gets the same
// filler lists and localized messages, which is an acceptable collapse here.
var scriptRanges = []struct {
	lo, hi rune
	code   string
}{
	{0x0900, 0x097F, CodeHindi},   // Devanagari
	{0x0980, 0x09FF, CodeBengali}, // Bengali
	{0x0B80, 0x0BFF, CodeTamil},   // Tamil
	{0x0C00, 0x0C7F, CodeTelugu},  // Telugu
}

// englishStopWords are frequent English function words used to raise
// confidence for Latin-script text.
var englishStopWords = map[string]struct{}{
	"the": {}, "is": {}, "are": {}, "was": {}, "what": {}, "how": {},
	"why": {}, "where": {}, "when": {}, "which": {}, "a": {}, "an": {},
	"of": {}, "in": {}, "to": {}, "and": {}, "does": {}, "do": {},
	"can": {}, "explain": {}, "tell": {}, "me": {}, "about": {},
}

// Detector identifies query languages.
type Detector struct {
	defaultCode string
}

// NewDetector creates a detector that falls back to defaultCode when
// detection is inconclusive. An unknown defaultCode falls back to English.
func NewDetector(defaultCode string) *Detector {
	if _, ok := names[defaultCode]; !ok {
		defaultCode = CodeEnglish
	}
	return &Detector{defaultCode: defaultCode}
}

// Detect classifies the language of text. Never fails: empty or
// indeterminate input returns the default language with low confidence.
func (d *Detector) Detect(text string) Info {
	text = strings.TrimSpace(text)
	if text == "" {
		return d.fallback()
	}

	var letters int
	counts := make(map[string]int, len(scriptRanges))
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for _, sr := range scriptRanges {
			if r >= sr.lo && r <= sr.hi {
				counts[sr.code]++
				break
			}
		}
	}

	if letters == 0 {
		return d.fallback()
	}

	// Dominant non-Latin script wins
	bestCode, bestCount := "", 0
	for code, n := range counts {
		if n > bestCount {
			bestCode, bestCount = code, n
		}
	}
	if bestCode != "" && float64(bestCount)/float64(letters) >= 0.3 {
		return Info{
			Language:   names[bestCode],
			Code:       bestCode,
			Confidence: float64(bestCount) / float64(letters),
		}
	}

	// Latin text: stop-word hits raise confidence that this is English
	hits := 0
	words := strings.Fields(strings.ToLower(text))
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?\"'()")
		if _, ok := englishStopWords[w]; ok {
			hits++
		}
	}
	if hits > 0 {
		conf := 0.5 + 0.1*float64(hits)
		if conf > 0.95 {
			conf = 0.95
		}
		return Info{Language: names[CodeEnglish], Code: CodeEnglish, Confidence: conf}
	}

	return d.fallback()
}

// fallback returns the default language with degraded confidence.
func (d *Detector) fallback() Info {
	return Info{
		Language:   names[d.defaultCode],
		Code:       d.defaultCode,
		Confidence: 0.3,
	}
}

// Name returns the human-readable name for a language code, or the code
// itself when unknown.
func Name(code string) string {
	if n, ok := names[code]; ok {
		return n
	}
	return code
}

// Supported reports whether code is a known language code.
func Supported(code string) bool {
	_, ok := names[code]
	return ok
}
