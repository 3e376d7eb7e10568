// Package embedding ranks job categories by cosine similarity between text embeddings.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Vector is a dense text embedding.
type Vector []float32

// Encoder turns text into embedding vectors.
type Encoder interface {
	// Encode returns one vector per input text, in input order.
	Encode(ctx context.Context, texts []string) ([]Vector, error)
	// Dimension returns the vector size, or 0 if not yet known.
	Dimension() int
	// Close releases any resources held by the encoder.
	Close() error
}

// Provider identifies an encoder backend.
type Provider string

const (
	// ProviderSentenceTransformers runs a local sentence-transformers model in a Python worker.
	ProviderSentenceTransformers Provider = "sentence-transformers"
	// ProviderGemini calls the Gemini embedding API.
	ProviderGemini Provider = "gemini"
	// ProviderHashing is an offline feature-hashing encoder with no model download.
	ProviderHashing Provider = "hashing"
)

// DefaultModel is the sentence-transformers model used when none is configured.
const DefaultModel = "all-MiniLM-L6-v2"

// DefaultGeminiModel is the Gemini embedding model used when none is configured.
const DefaultGeminiModel = "text-embedding-004"

// DeviceCPU forces CPU execution for local models.
const DeviceCPU = "cpu"

// ErrUninitializedStorage reports that the model weights could not be materialized on the
// requested device (for example a meta-tensor copy failure). Retrying on CPU usually works.
var ErrUninitializedStorage = errors.New("model storage is uninitialized")

// Options configures encoder construction.
type Options struct {
	Provider Provider
	Model    string
	// Device is passed to local models; empty lets the model pick.
	Device string
	// APIKey is required by remote providers.
	APIKey string
	// PythonBin is the interpreter used by the sentence-transformers worker.
	PythonBin string
	// Workers is the number of local worker processes.
	Workers int
	// Dimension is the vector size of the hashing provider.
	Dimension int
	Logger    *zap.Logger
}

// ModelName returns the configured model or the provider default.
func (o Options) ModelName() string {
	if o.Model != "" {
		return o.Model
	}
	if o.Provider == ProviderGemini {
		return DefaultGeminiModel
	}
	if o.Provider == ProviderHashing {
		return fmt.Sprintf("hashing-%d", o.dimension())
	}
	return DefaultModel
}

func (o Options) dimension() int {
	if o.Dimension > 0 {
		return o.Dimension
	}
	return defaultHashingDimension
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// ParseProvider validates a provider name.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case ProviderSentenceTransformers, ProviderGemini, ProviderHashing:
		return p, nil
	case "":
		return ProviderSentenceTransformers, nil
	default:
		return "", fmt.Errorf("unknown embedding provider %q", name)
	}
}

// Factory constructs an encoder from options.
type Factory func(ctx context.Context, opts Options) (Encoder, error)

// NewEncoder constructs the encoder for opts.Provider.
func NewEncoder(ctx context.Context, opts Options) (Encoder, error) {
	switch opts.Provider {
	case ProviderGemini:
		return NewGeminiEncoder(ctx, opts)
	case ProviderHashing:
		return NewHashingEncoder(opts.dimension()), nil
	case ProviderSentenceTransformers, "":
		return NewPythonEncoder(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", opts.Provider)
	}
}

// EncoderError wraps a failure reported by an encoder backend.
type EncoderError struct {
	Provider Provider
	Message  string
	Cause    error
}

func (e *EncoderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s encoder: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s encoder: %s", e.Provider, e.Message)
}

func (e *EncoderError) Unwrap() error {
	return e.Cause
}
