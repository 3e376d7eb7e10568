package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/job-recommender/internal/catalog"
	"github.com/jonathan/job-recommender/internal/config"
	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/embedding"
	"github.com/jonathan/job-recommender/internal/export"
	"github.com/jonathan/job-recommender/internal/observability"
	"github.com/jonathan/job-recommender/internal/parsing"
	"github.com/jonathan/job-recommender/internal/ranking"
	"github.com/jonathan/job-recommender/internal/types"
)

const (
	engineKeyword   = "keyword"
	engineEmbedding = "embedding"
)

// embeddingStack is the scorer holder behind the embedding engine, plus the optional
// Postgres vector cache it was wired to.
type embeddingStack struct {
	holder *embedding.Holder
	model  string
	db     *db.DB
}

// openEmbedding wires encoder options, the optional vector store and the scorer holder.
// Nothing is encoded until the holder is first asked for a scorer.
func openEmbedding(ctx context.Context, cfg *config.Config, log *zap.Logger) (*embeddingStack, error) {
	provider, err := embedding.ParseProvider(cfg.Embedding.Provider)
	if err != nil {
		return nil, err
	}
	opts := embedding.Options{
		Provider:  provider,
		Model:     cfg.Embedding.Model,
		Device:    cfg.Embedding.Device,
		APIKey:    cfg.Embedding.APIKey,
		PythonBin: cfg.Embedding.Python.Bin,
		Workers:   cfg.Embedding.Workers,
		Dimension: cfg.Embedding.Dimension,
		Logger:    log,
	}
	stack := &embeddingStack{model: opts.ModelName()}

	var store embedding.VectorStore
	if cfg.Database.URL != "" {
		database, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		es := db.NewEmbeddingStore(database)
		if err := es.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, err
		}
		stack.db = database
		store = es
		log.Info("Using Postgres embedding cache", zap.String("model", stack.model))
	}

	scorerOpts := embedding.ScorerOptions{
		Model:       stack.model,
		Store:       store,
		BatchSize:   cfg.Embedding.BatchSize,
		Concurrency: cfg.Embedding.Concurrency,
		Logger:      log,
	}
	stack.holder = embedding.NewHolder(func(ctx context.Context) (*embedding.Scorer, error) {
		enc, err := embedding.OpenEncoder(ctx, embedding.NewEncoder, opts)
		if err != nil {
			return nil, err
		}
		s, err := embedding.NewScorer(ctx, catalog.Default(), enc, scorerOpts)
		if err != nil {
			_ = enc.Close()
			return nil, err
		}
		return s, nil
	}, log)

	return stack, nil
}

// Close releases the scorer's encoder and the database pool.
func (s *embeddingStack) Close() error {
	err := s.holder.Close()
	if s.db != nil {
		s.db.Close()
	}
	return err
}

// cliEngine scores text for the recommend and batch commands.
type cliEngine struct {
	name     string
	keyword  *ranking.KeywordScorer
	stack    *embeddingStack
	maxChars int
}

func newCLIEngine(ctx context.Context, name string, cfg *config.Config, log *zap.Logger) (*cliEngine, error) {
	switch name {
	case engineKeyword:
		return &cliEngine{
			name:     name,
			keyword:  ranking.NewKeywordScorer(nil),
			maxChars: cfg.Keyword.MaxChars,
		}, nil
	case engineEmbedding:
		stack, err := openEmbedding(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &cliEngine{name: name, stack: stack, maxChars: cfg.Embedding.MaxChars}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want %s or %s)", name, engineKeyword, engineEmbedding)
	}
}

// Model names the embedding model, or "" for the keyword engine.
func (e *cliEngine) Model() string {
	if e.stack == nil {
		return ""
	}
	return e.stack.model
}

func (e *cliEngine) Close() error {
	if e.stack == nil {
		return nil
	}
	return e.stack.Close()
}

// outcome holds the results of one engine; exactly one of the slices is set.
type outcome struct {
	Keyword []ranking.Result
	Matches []embedding.Match
	Model   string
}

func (e *cliEngine) score(ctx context.Context, text string, n int) (*outcome, error) {
	if e.maxChars > 0 {
		text, _ = parsing.TruncateRunes(text, e.maxChars)
	}

	if e.keyword != nil {
		return &outcome{Keyword: e.keyword.Recommend(text, n)}, nil
	}

	scorer, err := e.stack.holder.Get(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := scorer.Recommend(ctx, text, n)
	if err != nil {
		return nil, err
	}
	return &outcome{Matches: matches, Model: e.stack.model}, nil
}

// response renders the outcome as the matching service would.
func (o *outcome) response() any {
	if o.Matches != nil {
		recs := make([]types.EmbeddingRecommendation, len(o.Matches))
		for i, m := range o.Matches {
			recs[i] = types.EmbeddingRecommendation{Title: m.Title, Score: embedding.Percent(m.Similarity), Explanation: m.Explanation}
		}
		return types.EmbeddingResponse{Recommendations: recs}
	}
	recs := make([]types.KeywordRecommendation, len(o.Keyword))
	for i, r := range o.Keyword {
		recs[i] = types.KeywordRecommendation{Title: r.Title, Score: r.Score, Reason: r.Reason}
	}
	return types.KeywordResponse{Recommendations: recs}
}

func (o *outcome) recommendations() []export.Recommendation {
	if o.Matches != nil {
		out := make([]export.Recommendation, len(o.Matches))
		for i, m := range o.Matches {
			out[i] = export.Recommendation{Title: m.Title, Score: embedding.Percent(m.Similarity), Reason: m.Explanation}
		}
		return out
	}
	out := make([]export.Recommendation, len(o.Keyword))
	for i, r := range o.Keyword {
		out[i] = export.Recommendation{Title: r.Title, Score: r.Score, Reason: r.Reason}
	}
	return out
}

func (o *outcome) print(p *observability.Printer) {
	if o.Matches != nil {
		p.PrintEmbeddingMatches(o.Model, o.Matches)
		return
	}
	p.PrintKeywordResults(o.Keyword)
}
