package embedding

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiMaxBatch is the largest batch the embedding API accepts in one call.
const geminiMaxBatch = 100

// GeminiEncoder embeds text with the Gemini embedding API.
type GeminiEncoder struct {
	client *genai.Client
	model  *genai.EmbeddingModel
	name   string
	dim    atomic.Int64
}

// NewGeminiEncoder creates a Gemini embedding client.
func NewGeminiEncoder(ctx context.Context, opts Options) (*GeminiEncoder, error) {
	if opts.APIKey == "" {
		return nil, &EncoderError{Provider: ProviderGemini, Message: "API key is required"}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, &EncoderError{Provider: ProviderGemini, Message: "failed to create client", Cause: err}
	}

	name := opts.ModelName()
	em := client.EmbeddingModel(name)
	em.TaskType = genai.TaskTypeSemanticSimilarity

	return &GeminiEncoder{client: client, model: em, name: name}, nil
}

// Encode embeds texts, splitting into API-sized batches.
func (e *GeminiEncoder) Encode(ctx context.Context, texts []string) ([]Vector, error) {
	if len(texts) == 0 {
		return []Vector{}, nil
	}
	if len(texts) == 1 {
		res, err := e.model.EmbedContent(ctx, genai.Text(texts[0]))
		if err != nil {
			return nil, &EncoderError{Provider: ProviderGemini, Message: "embed content failed", Cause: err}
		}
		if res.Embedding == nil {
			return nil, &EncoderError{Provider: ProviderGemini, Message: "empty embedding in response"}
		}
		return []Vector{e.record(res.Embedding.Values)}, nil
	}

	out := make([]Vector, 0, len(texts))
	for start := 0; start < len(texts); start += geminiMaxBatch {
		end := min(start+geminiMaxBatch, len(texts))
		batch := e.model.NewBatch()
		for _, t := range texts[start:end] {
			batch.AddContent(genai.Text(t))
		}
		res, err := e.model.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, &EncoderError{Provider: ProviderGemini, Message: "batch embed failed", Cause: err}
		}
		if len(res.Embeddings) != end-start {
			return nil, &EncoderError{
				Provider: ProviderGemini,
				Message:  fmt.Sprintf("got %d embeddings for %d texts", len(res.Embeddings), end-start),
			}
		}
		for _, emb := range res.Embeddings {
			if emb == nil {
				return nil, &EncoderError{Provider: ProviderGemini, Message: "empty embedding in batch response"}
			}
			out = append(out, e.record(emb.Values))
		}
	}
	return out, nil
}

// record remembers the dimension of the first vector seen.
func (e *GeminiEncoder) record(values []float32) Vector {
	e.dim.CompareAndSwap(0, int64(len(values)))
	return Vector(values)
}

// Dimension returns the embedding size once a call has completed.
func (e *GeminiEncoder) Dimension() int {
	return int(e.dim.Load())
}

// Model returns the embedding model name.
func (e *GeminiEncoder) Model() string {
	return e.name
}

// Close releases the API client.
func (e *GeminiEncoder) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
