package db

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/job-recommender/internal/catalog"
)

func TestContentHash(t *testing.T) {
	h := ContentHash("Software Engineer. Keywords: python; java")

	assert.Len(t, h, 64)
	assert.Equal(t, h, ContentHash("Software Engineer. Keywords: python; java"))
	assert.NotEqual(t, h, ContentHash("Software Engineer. Keywords: python"))
}

func TestContentHash_KnownValue(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHash(""))
}

func TestContentHash_DistinctPerCategory(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range catalog.Default().Descriptions() {
		h := ContentHash(d)
		assert.False(t, seen[h], "duplicate hash for %q", d)
		seen[h] = true
	}
}
