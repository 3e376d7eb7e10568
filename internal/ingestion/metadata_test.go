package ingestion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHash(t *testing.T) {
	hash1 := computeHash("test content")
	hash2 := computeHash("different content")

	assert.Len(t, hash1, 64)
	assert.NotEqual(t, hash1, hash2)
	assert.Equal(t, hash1, computeHash("test content"))
}

func TestNewMetadata(t *testing.T) {
	meta := NewMetadata("cv.pdf", FormatPDF, "Résumé text")

	assert.Equal(t, "cv.pdf", meta.Source)
	assert.Equal(t, FormatPDF, meta.Format)
	assert.Equal(t, 11, meta.Characters)
	assert.Equal(t, computeHash("Résumé text"), meta.Hash)

	ts, err := time.Parse(time.RFC3339, meta.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestMetadata_JSON(t *testing.T) {
	meta := NewMetadata("cv.docx", FormatDOCX, "text")

	data, err := json.Marshal(meta)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "cv.docx", raw["source"])
	assert.Equal(t, "docx", raw["format"])
	assert.EqualValues(t, 4, raw["characters"])
}
