package query

import (
	"regexp"
	"strings"
	"unicode"
)

// Sanitization limits.
const (
	// MinQueryLength is the minimum number of meaningful characters a
	// query must contain to be classifiable.
	MinQueryLength = 2

	// MaxQueryLength caps query size; longer input is truncated, not
	// rejected, so pasted passages still produce a usable query.
	MaxQueryLength = 2000
)

// Compiled once at package init.
var (
	scriptTagPattern = regexp.MustCompile(`(?is)<script.*?>.*?</script>`)
	htmlTagPattern   = regexp.MustCompile(`<[^>]*>`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// Sanitize strips control characters and unsafe markup from raw input and
// normalizes whitespace. It is a total function: any input produces a
// (possibly empty) string, never an error.
func Sanitize(raw string) string {
	// Drop embedded script bodies before stripping remaining tags
	s := scriptTagPattern.ReplaceAllString(raw, " ")
	s = htmlTagPattern.ReplaceAllString(s, " ")

	// Remove control and non-printable runes, keep all scripts
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) {
			b.WriteRune(' ')
			continue
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}

	s = whitespaceRun.ReplaceAllString(b.String(), " ")
	s = strings.TrimSpace(s)

	if len(s) > MaxQueryLength {
		s = truncateOnRune(s, MaxQueryLength)
	}

	return s
}

// truncateOnRune cuts s to at most max bytes without splitting a rune.
func truncateOnRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
