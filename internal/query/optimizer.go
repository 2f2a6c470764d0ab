package query

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// DefaultLanguageCode is the filler-list fallback when a detected
// language has no list of its own.
const DefaultLanguageCode = "en"

var (
	fillerPatternsOnce sync.Once
	fillerPatterns     map[string][]*regexp.Regexp
)

// fillerPatternsFor compiles the filler list for langCode, falling back
// to the default language. Patterns anchor on whitespace or string edges
// rather than \b, which only understands ASCII word characters and would
// never match Devanagari phrases.
func fillerPatternsFor(langCode string) []*regexp.Regexp {
	fillerPatternsOnce.Do(func() {
		fillerPatterns = make(map[string][]*regexp.Regexp, len(fillerWords))
		for code, phrases := range fillerWords {
			// Longest first so "i would like to know" wins over "like"
			sorted := make([]string, len(phrases))
			copy(sorted, phrases)
			sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

			compiled := make([]*regexp.Regexp, 0, len(sorted))
			for _, phrase := range sorted {
				words := strings.Fields(phrase)
				for i, w := range words {
					words[i] = regexp.QuoteMeta(w)
				}
				expr := fmt.Sprintf(`(?i)(^|\s)%s($|\s)`, strings.Join(words, `\s+`))
				compiled = append(compiled, regexp.MustCompile(expr))
			}
			fillerPatterns[code] = compiled
		}
	})

	if patterns, ok := fillerPatterns[langCode]; ok {
		return patterns
	}
	return fillerPatterns[DefaultLanguageCode]
}

// Optimize normalizes a sanitized query into its canonical form:
// lowercase, filler phrases removed as whole words, whitespace
// collapsed, trimmed. The result is the cache key for the whole
// pipeline, so it must be stable: Optimize(Optimize(x)) == Optimize(x),
// and queries differing only in filler, case, or spacing converge.
func Optimize(text, langCode string) string {
	patterns := fillerPatternsFor(langCode)

	// Removing one filler can juxtapose words into another filler
	// phrase, and the patterns consume their separating whitespace, so
	// repeated fillers need repeated passes. Loop until the text stops
	// changing; every productive pass strictly shrinks the collapsed
	// string, so the loop terminates.
	out := strings.ToLower(text)
	for {
		prev := out
		for _, p := range patterns {
			out = p.ReplaceAllString(out, " ")
		}
		out = strings.TrimSpace(whitespaceRun.ReplaceAllString(out, " "))
		if out == prev {
			return out
		}
	}
}

// ExtractKeyTerms pulls the content-bearing tokens from a query for
// diagnostics and logging. Short tokens and stop words are dropped.
// Not involved in caching or control flow.
func ExtractKeyTerms(text string) []string {
	terms := make([]string, 0, 8)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,;:!?\"'()[]")
		if len([]rune(tok)) <= 3 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		terms = append(terms, tok)
	}
	return terms
}

// ExpandAcronyms appends a parenthetical expansion after the first
// standalone occurrence of each known acronym, leaving the acronym
// itself in place: "what is DNA" becomes
// "what is DNA (deoxyribonucleic acid)". Already-expanded text is left
// alone. Used by answer strategies to widen retrieval, not by the
// default preprocessing pipeline.
func ExpandAcronyms(text string) string {
	acronyms := make([]string, 0, len(acronymExpansions))
	for a := range acronymExpansions {
		acronyms = append(acronyms, a)
	}
	sort.Strings(acronyms)

	lower := strings.ToLower(text)
	for _, acronym := range acronyms {
		expansion := acronymExpansions[acronym]
		if strings.Contains(lower, expansion) {
			continue // already expanded
		}
		pattern := regexp.MustCompile(`(?i)(^|\s)(` + regexp.QuoteMeta(acronym) + `)($|[\s.,;:!?])`)
		replaced := false
		text = pattern.ReplaceAllStringFunc(text, func(match string) string {
			if replaced {
				return match
			}
			replaced = true
			sub := pattern.FindStringSubmatch(match)
			return sub[1] + sub[2] + " (" + expansion + ")" + sub[3]
		})
	}
	return text
}
