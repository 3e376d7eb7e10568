package embedding

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-recommender/internal/catalog"
	"github.com/jonathan/job-recommender/internal/parsing"
)

const (
	defaultBatchSize   = 32
	defaultConcurrency = 4
)

// Match is one category ranked by similarity.
type Match struct {
	Key         string  `json:"key"`
	Title       string  `json:"title"`
	Similarity  float64 `json:"similarity"`
	Explanation string  `json:"explanation"`
}

// VectorStore persists category description vectors across restarts.
type VectorStore interface {
	// Lookup returns the stored vectors for the given texts, keyed by text. Missing texts are absent.
	Lookup(ctx context.Context, model string, texts []string) (map[string]Vector, error)
	// Save stores vectors keyed by text.
	Save(ctx context.Context, model string, vectors map[string]Vector) error
}

// ScorerOptions configures scorer construction.
type ScorerOptions struct {
	// Model names the encoder model; used as the VectorStore namespace.
	Model string
	// Store is optional.
	Store       VectorStore
	BatchSize   int
	Concurrency int
	Logger      *zap.Logger
}

// Scorer ranks catalog categories against text by embedding similarity.
// Category vectors are computed once at construction and never change, so a
// Scorer is safe for concurrent use.
type Scorer struct {
	catalog      *catalog.Catalog
	categories   []catalog.Category
	descriptions []string
	vectors      []Vector
	encoder      Encoder
	model        string
	logger       *zap.Logger
}

// NewScorer embeds every category description and caches the vectors.
func NewScorer(ctx context.Context, c *catalog.Catalog, enc Encoder, opts ScorerOptions) (*Scorer, error) {
	if enc == nil {
		return nil, fmt.Errorf("encoder is required")
	}
	if c == nil {
		c = catalog.Default()
	}
	if c.Len() == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Scorer{
		catalog:      c,
		categories:   c.Categories(),
		descriptions: c.Descriptions(),
		encoder:      enc,
		model:        opts.Model,
		logger:       log,
	}

	start := time.Now()
	vectors, cached, err := s.loadVectors(ctx, opts)
	if err != nil {
		return nil, err
	}
	s.vectors = vectors

	log.Info("category embeddings ready",
		zap.String("model", s.model),
		zap.Int("categories", len(vectors)),
		zap.Int("from_store", cached),
		zap.Int("dimension", len(vectors[0])),
		zap.Duration("elapsed", time.Since(start)),
	)
	return s, nil
}

// loadVectors returns one vector per description, reading the store first when configured.
func (s *Scorer) loadVectors(ctx context.Context, opts ScorerOptions) ([]Vector, int, error) {
	vectors := make([]Vector, len(s.descriptions))

	var stored map[string]Vector
	if opts.Store != nil {
		var err error
		stored, err = opts.Store.Lookup(ctx, s.model, s.descriptions)
		if err != nil {
			s.logger.Warn("embedding store lookup failed, encoding all categories", zap.Error(err))
			stored = nil
		}
	}

	missing := make([]int, 0, len(s.descriptions))
	cached := 0
	for i, d := range s.descriptions {
		if v, ok := stored[d]; ok && len(v) > 0 {
			vectors[i] = v
			cached++
			continue
		}
		missing = append(missing, i)
	}

	if len(missing) > 0 {
		texts := make([]string, len(missing))
		for j, i := range missing {
			texts[j] = s.descriptions[i]
		}
		encoded, err := encodeBatches(ctx, s.encoder, texts, opts.BatchSize, opts.Concurrency)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to embed category descriptions: %w", err)
		}
		fresh := make(map[string]Vector, len(missing))
		for j, i := range missing {
			vectors[i] = encoded[j]
			fresh[s.descriptions[i]] = encoded[j]
		}
		if opts.Store != nil {
			if err := opts.Store.Save(ctx, s.model, fresh); err != nil {
				s.logger.Warn("failed to persist category embeddings", zap.Error(err))
			}
		}
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dim {
			return nil, 0, fmt.Errorf("inconsistent embedding for category %q: got %d dimensions, want %d",
				s.categories[i].Key, len(v), dim)
		}
	}
	return vectors, cached, nil
}

// encodeBatches encodes texts in fixed-size batches, running up to concurrency batches at once.
func encodeBatches(ctx context.Context, enc Encoder, texts []string, batchSize, concurrency int) ([]Vector, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	out := make([]Vector, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		g.Go(func() error {
			batch := texts[start:end]
			vecs, err := enc.Encode(gctx, batch)
			if err != nil {
				return err
			}
			if len(vecs) != len(batch) {
				return fmt.Errorf("encoder returned %d vectors for %d texts", len(vecs), len(batch))
			}
			copy(out[start:end], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Recommend returns the n categories most similar to text, best first.
// Empty text is still encoded; a non-positive n yields an empty list.
func (s *Scorer) Recommend(ctx context.Context, text string, n int) ([]Match, error) {
	if n <= 0 {
		return []Match{}, nil
	}
	normalized := parsing.Normalize(text)

	vecs, err := s.encoder.Encode(ctx, []string{normalized})
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("encoder returned %d vectors for 1 text", len(vecs))
	}
	query := vecs[0]
	if len(query) != len(s.vectors[0]) {
		return nil, fmt.Errorf("query embedding has %d dimensions, category embeddings have %d",
			len(query), len(s.vectors[0]))
	}

	matches := make([]Match, len(s.categories))
	for i, cat := range s.categories {
		matches[i] = Match{
			Key:         cat.Key,
			Title:       cat.Title,
			Similarity:  Cosine(s.vectors[i], query),
			Explanation: s.descriptions[i],
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}

// Catalog returns the catalog the scorer ranks against.
func (s *Scorer) Catalog() *catalog.Catalog {
	return s.catalog
}

// Model returns the model name the scorer was built with.
func (s *Scorer) Model() string {
	return s.model
}

// CategoryVector returns the cached vector for a category key.
func (s *Scorer) CategoryVector(key string) (Vector, bool) {
	for i, cat := range s.categories {
		if cat.Key == key {
			return s.vectors[i], true
		}
	}
	return nil, false
}

// Close releases the underlying encoder.
func (s *Scorer) Close() error {
	return s.encoder.Close()
}
