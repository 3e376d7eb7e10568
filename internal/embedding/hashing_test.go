package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashingEncoder(t *testing.T) {
	enc := NewHashingEncoder(64)
	assert.Equal(t, 64, enc.Dimension())

	vecs, err := enc.Encode(context.Background(), []string{"Python developer", "python   DEVELOPER", ""})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	assert.Equal(t, vecs[0], vecs[1], "encoding is deterministic and normalization-insensitive")

	var norm float64
	for _, x := range vecs[0] {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)

	for _, x := range vecs[2] {
		assert.Zero(t, x)
	}
}

func TestHashingEncoder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHashingEncoder(0).Encode(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider("Gemini")
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, p)

	p, err = ParseProvider("")
	require.NoError(t, err)
	assert.Equal(t, ProviderSentenceTransformers, p)

	_, err = ParseProvider("word2vec")
	assert.Error(t, err)
}

func TestOptions_ModelName(t *testing.T) {
	assert.Equal(t, DefaultModel, Options{}.ModelName())
	assert.Equal(t, DefaultGeminiModel, Options{Provider: ProviderGemini}.ModelName())
	assert.Equal(t, "hashing-128", Options{Provider: ProviderHashing, Dimension: 128}.ModelName())
	assert.Equal(t, "custom", Options{Model: "custom"}.ModelName())
}

func TestNewGeminiEncoder_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiEncoder(context.Background(), Options{Provider: ProviderGemini})
	var encErr *EncoderError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, ProviderGemini, encErr.Provider)
}

func TestNewEncoder_Hashing(t *testing.T) {
	enc, err := NewEncoder(context.Background(), Options{Provider: ProviderHashing, Dimension: 32})
	require.NoError(t, err)
	assert.Equal(t, 32, enc.Dimension())
	require.NoError(t, enc.Close())
}
