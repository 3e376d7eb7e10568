// Package catalog holds the fixed set of job categories that resumes are scored against.
package catalog

import (
	"fmt"
	"strings"

	"github.com/jonathan/job-recommender/internal/parsing"
)

// DefaultWeight is the weight of any keyword without an override.
const DefaultWeight = 1

// Category is a job category with its display title and keyword set.
type Category struct {
	Key      string   `json:"key"`
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
}

// Description renders the category the way it is fed to an embedding model.
func (c Category) Description() string {
	return fmt.Sprintf("%s. Keywords: %s", c.Title, strings.Join(c.Keywords, "; "))
}

// Catalog is an ordered, read-only collection of categories plus keyword weight overrides.
// Order is significant: it breaks ties when ranking.
type Catalog struct {
	categories []Category
	index      map[string]int
	weights    map[string]int
}

// New builds a catalog from categories and a weight table keyed by normalized keyword.
func New(categories []Category, weights map[string]int) (*Catalog, error) {
	c := &Catalog{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]int, len(categories)),
		weights:    make(map[string]int, len(weights)),
	}
	for _, cat := range categories {
		kws := make([]string, len(cat.Keywords))
		copy(kws, cat.Keywords)
		c.index[cat.Key] = len(c.categories)
		c.categories = append(c.categories, Category{Key: cat.Key, Title: cat.Title, Keywords: kws})
	}
	for kw, w := range weights {
		c.weights[parsing.NormalizeKeyword(kw)] = w
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks for duplicate keys, missing titles and empty keyword sets.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.categories))
	for _, cat := range c.categories {
		if cat.Key == "" {
			return &ValidationError{Field: "key", Message: "category key is required"}
		}
		if seen[cat.Key] {
			return &ValidationError{Key: cat.Key, Field: "key", Message: "duplicate category key"}
		}
		seen[cat.Key] = true
		if strings.TrimSpace(cat.Title) == "" {
			return &ValidationError{Key: cat.Key, Field: "title", Message: "title is required"}
		}
		if len(cat.Keywords) == 0 {
			return &ValidationError{Key: cat.Key, Field: "keywords", Message: "at least one keyword is required"}
		}
	}
	for kw, w := range c.weights {
		if w <= 0 {
			return &ValidationError{Field: "weights", Message: fmt.Sprintf("weight for %q must be positive", kw)}
		}
	}
	return nil
}

// Categories returns a copy of the categories in catalog order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		kws := make([]string, len(cat.Keywords))
		copy(kws, cat.Keywords)
		out[i] = Category{Key: cat.Key, Title: cat.Title, Keywords: kws}
	}
	return out
}

// Len returns the number of categories.
func (c *Catalog) Len() int {
	return len(c.categories)
}

// Get returns the category with the given key.
func (c *Catalog) Get(key string) (Category, bool) {
	i, ok := c.index[key]
	if !ok {
		return Category{}, false
	}
	cat := c.categories[i]
	return Category{Key: cat.Key, Title: cat.Title, Keywords: append([]string(nil), cat.Keywords...)}, true
}

// Weight returns the scoring weight for a keyword, looked up by its normalized form.
func (c *Catalog) Weight(keyword string) int {
	if w, ok := c.weights[parsing.NormalizeKeyword(keyword)]; ok {
		return w
	}
	return DefaultWeight
}

// Descriptions returns one embedding description per category, in catalog order.
func (c *Catalog) Descriptions() []string {
	out := make([]string, len(c.categories))
	for i, cat := range c.categories {
		out[i] = cat.Description()
	}
	return out
}

// ValidationError reports an invalid catalog definition.
type ValidationError struct {
	Key     string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("catalog validation error: %s.%s - %s", e.Key, e.Field, e.Message)
	}
	return fmt.Sprintf("catalog validation error: %s - %s", e.Field, e.Message)
}
