package server

import (
	"context"

	"github.com/jonathan/job-recommender/internal/catalog"
	"github.com/jonathan/job-recommender/internal/embedding"
	"github.com/jonathan/job-recommender/internal/ranking"
	"github.com/jonathan/job-recommender/internal/types"
)

// Engine is the scoring backend behind one of the two services.
type Engine interface {
	// Name is "keyword" or "embedding".
	Name() string
	// Ready reports whether Recommend can answer without further setup.
	Ready() bool
	// Model names the embedding model, or "" when there is none.
	Model() string
	// Catalog returns the categories being ranked.
	Catalog() *catalog.Catalog
	// Recommend scores text and returns the response body.
	Recommend(ctx context.Context, text string, n int) (any, error)
	// Failure renders a scoring error as the service's 500 envelope.
	Failure(err error) types.ErrorResponse
}

// KeywordEngine serves the keyword heuristic.
type KeywordEngine struct {
	scorer *ranking.KeywordScorer
}

// NewKeywordEngine wraps a keyword scorer. A nil scorer uses the default catalog.
func NewKeywordEngine(scorer *ranking.KeywordScorer) *KeywordEngine {
	if scorer == nil {
		scorer = ranking.NewKeywordScorer(nil)
	}
	return &KeywordEngine{scorer: scorer}
}

func (e *KeywordEngine) Name() string              { return "keyword" }
func (e *KeywordEngine) Ready() bool               { return true }
func (e *KeywordEngine) Model() string             { return "" }
func (e *KeywordEngine) Catalog() *catalog.Catalog { return e.scorer.Catalog() }

// Recommend returns a types.KeywordResponse.
func (e *KeywordEngine) Recommend(_ context.Context, text string, n int) (any, error) {
	results := e.scorer.Recommend(text, n)
	out := make([]types.KeywordRecommendation, len(results))
	for i, r := range results {
		out[i] = types.KeywordRecommendation{Title: r.Title, Score: r.Score, Reason: r.Reason}
	}
	return types.KeywordResponse{Recommendations: out}, nil
}

// Failure renders {error, detail}.
func (e *KeywordEngine) Failure(err error) types.ErrorResponse {
	return types.ErrorResponse{Error: "recommend error", Detail: err.Error()}
}

// ScorerSource hands out the shared embedding scorer. *embedding.Holder implements it.
type ScorerSource interface {
	Get(ctx context.Context) (*embedding.Scorer, error)
	Ready() bool
}

// EmbeddingEngine serves embedding similarity.
type EmbeddingEngine struct {
	source  ScorerSource
	catalog *catalog.Catalog
	model   string
}

// NewEmbeddingEngine serves scorers from source. The catalog is needed up front so
// category listing does not force a lazy scorer build.
func NewEmbeddingEngine(source ScorerSource, c *catalog.Catalog, model string) *EmbeddingEngine {
	if c == nil {
		c = catalog.Default()
	}
	return &EmbeddingEngine{source: source, catalog: c, model: model}
}

func (e *EmbeddingEngine) Name() string              { return "embedding" }
func (e *EmbeddingEngine) Ready() bool               { return e.source.Ready() }
func (e *EmbeddingEngine) Model() string             { return e.model }
func (e *EmbeddingEngine) Catalog() *catalog.Catalog { return e.catalog }

// Recommend returns a types.EmbeddingResponse with similarities as integer percentages.
func (e *EmbeddingEngine) Recommend(ctx context.Context, text string, n int) (any, error) {
	scorer, err := e.source.Get(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := scorer.Recommend(ctx, text, n)
	if err != nil {
		return nil, err
	}
	out := make([]types.EmbeddingRecommendation, len(matches))
	for i, m := range matches {
		out[i] = types.EmbeddingRecommendation{
			Title:       m.Title,
			Score:       embedding.Percent(m.Similarity),
			Explanation: m.Explanation,
		}
	}
	return types.EmbeddingResponse{Recommendations: out}, nil
}

// Failure renders {error}.
func (e *EmbeddingEngine) Failure(err error) types.ErrorResponse {
	return types.ErrorResponse{Error: err.Error()}
}
