package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Empty string", "", ""},
		{"Whitespace only", "  \t\n ", ""},
		{"Lowercases", "Senior Python Developer", "senior python developer"},
		{"Slash separator", "CI/CD pipelines", "ci cd pipelines"},
		{"Dash and underscore", "front-end snake_case", "front end snake case"},
		{"Plus separator", "C++ and C#", "c and c#"},
		{"Collapses whitespace", "data\n\n  science\tteam", "data science team"},
		{"Trims", "  docker  ", "docker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"Empty", "", nil},
		{"Whitespace only", "   ", nil},
		{"Punctuation stripped", "Python, Docker & AWS.", []string{"python", "docker", "aws"}},
		{"Separators split", "CI/CD with Kubernetes", []string{"ci", "cd", "with", "kubernetes"}},
		{"Unicode letters kept", "Gestión de proyectos", []string{"gestión", "de", "proyectos"}},
		{"Digits kept", "3D render in Maya 2024", []string{"3d", "render", "in", "maya", "2024"}},
		{"Only punctuation", "!!! ... ???", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if tt.expected == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeKeyword(t *testing.T) {
	assert.Equal(t, "ci cd", NormalizeKeyword("CI/CD"))
	assert.Equal(t, "machine learning", NormalizeKeyword(" Machine Learning "))
	assert.Equal(t, "after  effects", NormalizeKeyword("after  effects"))
	assert.Equal(t, "c", NormalizeKeyword("c++"))
}

func TestTruncateRunes(t *testing.T) {
	got, cut := TruncateRunes("hello", 0)
	assert.Equal(t, "hello", got)
	assert.False(t, cut)

	got, cut = TruncateRunes("hello", 10)
	assert.Equal(t, "hello", got)
	assert.False(t, cut)

	got, cut = TruncateRunes("hello world", 5)
	assert.Equal(t, "hello", got)
	assert.True(t, cut)

	// Multi-byte characters count as one.
	got, cut = TruncateRunes("ñañaña", 4)
	assert.Equal(t, "ñaña", got)
	assert.True(t, cut)

	got, cut = TruncateRunes("ñañ", 3)
	assert.Equal(t, "ñañ", got)
	assert.False(t, cut)
}
