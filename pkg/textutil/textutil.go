// Package textutil provides string utilities shared across the clipper.
package textutil

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// NormalizeWhitespace replaces runs of whitespace with single spaces and
// trims the result.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most maxLength bytes, appending an ellipsis
// marker when truncation happened.
func Truncate(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}

	return s[:maxLength] + "..."
}

// WordCount counts words using Unicode segmentation (UAX #29). Tokens
// that carry no letter or digit (punctuation, whitespace) are skipped.
func WordCount(s string) int {
	count := 0

	tokens := words.FromString(s)
	for tokens.Next() {
		if isWord(tokens.Value()) {
			count++
		}
	}

	return count
}

func isWord(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}

	return false
}

// Slugify turns an arbitrary title into a safe lower-case filename stem.
// Runs of non-alphanumeric characters become single hyphens.
func Slugify(s string) string {
	var sb strings.Builder

	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)

			lastHyphen = false
		default:
			if !lastHyphen {
				sb.WriteRune('-')

				lastHyphen = true
			}
		}
	}

	slug := strings.TrimSuffix(sb.String(), "-")
	if slug == "" {
		return "untitled"
	}

	return slug
}
