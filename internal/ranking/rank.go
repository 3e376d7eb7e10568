package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/job-recommender/internal/catalog"
)

// Fallback result returned when no category matched.
const (
	FallbackTitle  = "Generalist / Entry-level"
	FallbackScore  = 50
	FallbackReason = "No strong keyword matches; broad role"
)

// Result is one ranked job recommendation.
type Result struct {
	Key     string   `json:"key,omitempty"`
	Title   string   `json:"title"`
	Score   int      `json:"score"`
	Reason  string   `json:"reason"`
	Matched []string `json:"matched,omitempty"`
}

// KeywordScorer ranks job categories by weighted keyword overlap with resume text.
// It holds no mutable state and is safe for concurrent use.
type KeywordScorer struct {
	catalog *catalog.Catalog
}

// NewKeywordScorer creates a scorer over the given catalog. A nil catalog uses the built-in one.
func NewKeywordScorer(c *catalog.Catalog) *KeywordScorer {
	if c == nil {
		c = catalog.Default()
	}
	return &KeywordScorer{catalog: c}
}

// Catalog returns the catalog the scorer ranks against.
func (s *KeywordScorer) Catalog() *catalog.Catalog {
	return s.catalog
}

// Recommend returns at most n recommendations for text, best first.
// Empty text or a non-positive n yields an empty list. Text that matches nothing
// yields the single generalist fallback.
func (s *KeywordScorer) Recommend(text string, n int) []Result {
	if text == "" || n <= 0 {
		return []Result{}
	}

	doc := newDocument(text)

	scores := make([]categoryScore, 0, s.catalog.Len())
	for _, cat := range s.catalog.Categories() {
		if cs, ok := computeCategoryScore(doc, cat, s.catalog.Weight); ok {
			scores = append(scores, cs)
		}
	}

	if len(scores) == 0 {
		return []Result{FallbackResult()}
	}

	// Sort by score (descending); catalog order breaks ties
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if len(scores) > n {
		scores = scores[:n]
	}

	results := make([]Result, 0, len(scores))
	for _, cs := range scores {
		results = append(results, Result{
			Key:     cs.category.Key,
			Title:   cs.category.Title,
			Score:   cs.score,
			Reason:  formatReason(cs.matched),
			Matched: cs.matched,
		})
	}
	return results
}

// FallbackResult is the recommendation used when no category matched.
func FallbackResult() Result {
	return Result{Title: FallbackTitle, Score: FallbackScore, Reason: FallbackReason}
}

// formatReason creates the human-readable explanation of a keyword match.
func formatReason(matched []string) string {
	return fmt.Sprintf("Matched keywords: %s", strings.Join(matched, ", "))
}
