package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-recommender/internal/embedding"
)

const createEmbeddingsTable = `
CREATE TABLE IF NOT EXISTS category_embeddings (
	model        TEXT        NOT NULL,
	content_hash TEXT        NOT NULL,
	content      TEXT        NOT NULL,
	vector       REAL[]      NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (model, content_hash)
)`

// EmbeddingStore persists category description vectors keyed by model and
// content hash, so a restart with the same model skips re-encoding.
type EmbeddingStore struct {
	db *DB
}

var _ embedding.VectorStore = (*EmbeddingStore)(nil)

// NewEmbeddingStore returns a store backed by db.
func NewEmbeddingStore(db *DB) *EmbeddingStore {
	return &EmbeddingStore{db: db}
}

// EnsureSchema creates the embeddings table if it does not exist.
func (s *EmbeddingStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.pool.Exec(ctx, createEmbeddingsTable); err != nil {
		return fmt.Errorf("failed to create category_embeddings table: %w", err)
	}
	return nil
}

// ContentHash is the storage key for a description.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Lookup returns stored vectors for texts under model, keyed by text.
func (s *EmbeddingStore) Lookup(ctx context.Context, model string, texts []string) (map[string]embedding.Vector, error) {
	out := make(map[string]embedding.Vector, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	byHash := make(map[string]string, len(texts))
	hashes := make([]string, 0, len(texts))
	for _, t := range texts {
		h := ContentHash(t)
		if _, dup := byHash[h]; !dup {
			byHash[h] = t
			hashes = append(hashes, h)
		}
	}

	rows, err := s.db.pool.Query(ctx,
		`SELECT content_hash, vector FROM category_embeddings
		 WHERE model = $1 AND content_hash = ANY($2)`,
		model, hashes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query category embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			hash   string
			vector []float32
		)
		if err := rows.Scan(&hash, &vector); err != nil {
			return nil, fmt.Errorf("failed to scan category embedding: %w", err)
		}
		if text, ok := byHash[hash]; ok {
			out[text] = embedding.Vector(vector)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read category embeddings: %w", err)
	}
	return out, nil
}

// Save upserts vectors keyed by text under model.
func (s *EmbeddingStore) Save(ctx context.Context, model string, vectors map[string]embedding.Vector) error {
	if len(vectors) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for text, vec := range vectors {
		batch.Queue(
			`INSERT INTO category_embeddings (model, content_hash, content, vector)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (model, content_hash) DO UPDATE SET vector = $4, created_at = NOW()`,
			model, ContentHash(text), text, []float32(vec),
		)
	}

	if err := s.db.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save category embeddings: %w", err)
	}
	return nil
}

// Count returns the number of vectors stored for model.
func (s *EmbeddingStore) Count(ctx context.Context, model string) (int, error) {
	var n int
	err := s.db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM category_embeddings WHERE model = $1`, model,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count category embeddings: %w", err)
	}
	return n, nil
}

// Purge deletes every vector stored for model, or for all models when model is empty.
func (s *EmbeddingStore) Purge(ctx context.Context, model string) (int64, error) {
	tag, err := s.db.pool.Exec(ctx,
		`DELETE FROM category_embeddings WHERE $1 = '' OR model = $1`, model,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge category embeddings: %w", err)
	}
	return tag.RowsAffected(), nil
}
