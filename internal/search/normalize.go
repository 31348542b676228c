package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases s, strips accent marks and collapses whitespace runs
// into single spaces. Leading and trailing whitespace is removed.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	return collapseSpaces(stripMarks(strings.ToLower(s)))
}

// stripMarks removes nonspacing marks after canonical decomposition,
// so "é" becomes "e".
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
