package services

import (
	"strings"
	"unicode"
)

// Slugify lowercases name and joins its alphanumeric runs with "-".
// "Calculus I: Limits" becomes "calculus-i-limits".
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// Slug column widths, in characters
const (
	catalogSlugLength = 120
	lessonSlugLength  = 160
)

// clipSlug cuts slug to at most n runes without leaving a trailing "-"
func clipSlug(slug string, n int) string {
	return strings.Trim(truncateRunes(slug, n), "-")
}

// NormalizeSemesterName maps a semester path segment to its stored name.
// This is one fixed rule, uppercase and drop "-", so "s-1" resolves "S1".
// It is not a general slugifier: "sem 1" does not resolve "S1".
func NormalizeSemesterName(segment string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(segment), "-", ""))
}
