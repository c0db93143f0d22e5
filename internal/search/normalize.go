package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the comparison key for text: compatibility-decomposed,
// stripped of every rune outside ASCII (accents and characters with no ASCII
// base form alike) and lowercased. Invalid UTF-8 is dropped.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(nonASCII)))
	folded, _, err := transform.String(t, text)
	if err != nil {
		return ""
	}
	return strings.ToLower(folded)
}

func nonASCII(r rune) bool {
	return r > unicode.MaxASCII
}
