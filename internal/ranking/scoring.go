// Package ranking scores resume text against job categories by weighted keyword overlap.
package ranking

import (
	"slices"
	"strings"

	"github.com/jonathan/job-recommender/internal/catalog"
	"github.com/jonathan/job-recommender/internal/parsing"
)

const (
	// highSignalWeight is the keyword weight that guarantees a minimum score when matched.
	highSignalWeight = 3
	// highSignalFloor is the minimum score for a category with a high-signal match.
	highSignalFloor = 60
	// titleBoost is added when the first word of a category title appears in the text.
	titleBoost = 10
	maxScore   = 100
)

// document is the pre-processed form of the input text shared by all category scorers.
type document struct {
	normalized string
	tokens     []string
	tokenSet   map[string]bool
	joined     string
}

func newDocument(text string) *document {
	tokens := parsing.Tokenize(text)
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return &document{
		normalized: parsing.Normalize(text),
		tokens:     tokens,
		tokenSet:   set,
		joined:     strings.Join(tokens, " "),
	}
}

// matchesKeyword reports whether a normalized keyword occurs in the document.
// Single words must be whole tokens; phrases match as a substring of the normalized
// text or when every word of the phrase appears as a token.
func (d *document) matchesKeyword(keyword string) bool {
	if !strings.Contains(keyword, " ") {
		return d.tokenSet[keyword]
	}
	if strings.Contains(d.normalized, keyword) {
		return true
	}
	parts := strings.Fields(keyword)
	if len(parts) == 0 {
		return false
	}
	for _, p := range parts {
		if !d.tokenSet[p] {
			return false
		}
	}
	return true
}

// categoryScore is the intermediate score for one category.
type categoryScore struct {
	category catalog.Category
	score    int
	matched  []string
}

// computeCategoryScore scores one category against the document.
// Returns ok=false when no keyword matched.
func computeCategoryScore(doc *document, cat catalog.Category, weightOf func(string) int) (categoryScore, bool) {
	matchedWeight := 0
	totalWeight := 0
	highSignal := false
	matched := make([]string, 0)

	for _, kw := range cat.Keywords {
		norm := parsing.NormalizeKeyword(kw)
		weight := weightOf(norm)
		totalWeight += weight

		if doc.matchesKeyword(norm) {
			matchedWeight += weight
			matched = append(matched, kw)
			if weight >= highSignalWeight {
				highSignal = true
			}
		}
	}

	if matchedWeight == 0 || totalWeight == 0 {
		return categoryScore{}, false
	}

	// Normalize by total possible weight
	score := min(maxScore, int(float64(matchedWeight)/float64(totalWeight)*100))
	if highSignal {
		score = max(score, highSignalFloor)
	}
	if titleWordPresent(doc, cat.Title) {
		score = min(maxScore, score+titleBoost)
	}

	return categoryScore{category: cat, score: score, matched: slices.Clip(matched)}, true
}

// titleWordPresent reports whether the first word of the title occurs anywhere in the
// space-joined token string. This is a plain substring test, so short title words
// can match inside longer tokens.
func titleWordPresent(doc *document, title string) bool {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return false
	}
	return strings.Contains(doc.joined, strings.ToLower(fields[0]))
}
