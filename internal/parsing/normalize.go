// Package parsing turns raw resume text into the normalized form and token list used for scoring.
package parsing

import (
	"regexp"
	"strings"
)

// separatorReplacer maps separator characters that join words in skill names
// (ci/cd, front-end, c++, snake_case) to a plain space.
var separatorReplacer = strings.NewReplacer(
	"/", " ",
	"_", " ",
	"-", " ",
	"+", " ",
)

// nonWord splits on anything that is not a letter, digit or underscore.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Normalize lowercases text, replaces separators with spaces and collapses whitespace.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	return strings.Join(strings.Fields(separatorReplacer.Replace(lower)), " ")
}

// Tokenize normalizes text and splits it into word tokens, preserving order.
// Empty tokens are dropped.
func Tokenize(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	parts := nonWord.Split(normalized, -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// NormalizeKeyword lowercases a catalog keyword and replaces separators.
// Unlike Normalize, inner whitespace runs are kept as-is.
func NormalizeKeyword(keyword string) string {
	return strings.TrimSpace(separatorReplacer.Replace(strings.ToLower(keyword)))
}

// TruncateRunes cuts text to at most limit characters. A non-positive limit disables truncation.
func TruncateRunes(text string, limit int) (string, bool) {
	if limit <= 0 {
		return text, false
	}
	// Fast path: byte length bounds rune count.
	if len(text) <= limit {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}
	return string(runes[:limit]), true
}
