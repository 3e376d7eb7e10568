package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
	"unicode/utf8"
)

// Metadata describes one extracted resume document.
type Metadata struct {
	Source     string `json:"source"`
	Format     Format `json:"format"`
	Characters int    `json:"characters"`
	Hash       string `json:"hash"`      // SHA256 hex digest of the extracted text
	Timestamp  string `json:"timestamp"` // RFC3339
}

// NewMetadata records the source name, detected format and a digest of the extracted text.
func NewMetadata(source string, format Format, text string) *Metadata {
	return &Metadata{
		Source:     source,
		Format:     format,
		Characters: utf8.RuneCountInString(text),
		Hash:       computeHash(text),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
