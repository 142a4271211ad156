// Package casmatch decides whether a page affirmatively lists a target
// chemical identifier such as a CAS registry number.
package casmatch

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// separators are characters that web pages commonly insert into or around
// registry numbers: whitespace variants and the hyphen/dash family.
func isSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '-', '‐', '‑', '‒', '–', '—', '−':
		return true
	}
	return false
}

// Normalize case-folds s, applies Unicode NFKC, and strips separator runs so
// that "67-64-1", "67 64 1" and "67–64–1" all normalize to "67641".
// Normalize is idempotent.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isSeparator(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Matches reports whether the normalized identifier occurs as a contiguous
// substring of the normalized text. Exact substring only, never fuzzy.
func Matches(text, identifier string) bool {
	id := Normalize(identifier)
	if id == "" {
		return false
	}
	return strings.Contains(Normalize(text), id)
}

// Find returns the first span of text whose normalized form equals the
// normalized identifier, or "" when absent. The span is reported in the
// original text so callers can record what the page actually showed.
func Find(text, identifier string) string {
	id := Normalize(identifier)
	if id == "" {
		return ""
	}

	runes := []rune(text)
	for start := 0; start < len(runes); start++ {
		if isSeparator(runes[start]) {
			continue
		}
		var b strings.Builder
		for end := start; end < len(runes); end++ {
			r := runes[end]
			if !isSeparator(r) {
				b.WriteString(Normalize(string(r)))
			}
			got := b.String()
			if got == id {
				return string(runes[start : end+1])
			}
			if len(got) >= len(id) {
				break
			}
		}
	}
	return ""
}
