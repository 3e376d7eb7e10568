package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/jonathan/job-recommender/internal/parsing"
)

const defaultHashingDimension = 512

// HashingEncoder is a deterministic bag-of-words encoder using the hashing trick.
// It needs no model files or network and is used for offline runs and tests.
type HashingEncoder struct {
	dim int
}

// NewHashingEncoder creates a hashing encoder producing vectors of size dim.
func NewHashingEncoder(dim int) *HashingEncoder {
	if dim <= 0 {
		dim = defaultHashingDimension
	}
	return &HashingEncoder{dim: dim}
}

// Encode hashes each token (and each adjacent token pair) into a signed bucket,
// then L2-normalizes the result.
func (e *HashingEncoder) Encode(ctx context.Context, texts []string) ([]Vector, error) {
	out := make([]Vector, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.encodeOne(t)
	}
	return out, nil
}

func (e *HashingEncoder) encodeOne(text string) Vector {
	v := make(Vector, e.dim)
	tokens := parsing.Tokenize(text)
	for i, tok := range tokens {
		e.add(v, tok, 1)
		if i > 0 {
			e.add(v, tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}

func (e *HashingEncoder) add(v Vector, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dim))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	v[idx] += weight
}

// Dimension returns the vector size.
func (e *HashingEncoder) Dimension() int {
	return e.dim
}

// Close is a no-op.
func (e *HashingEncoder) Close() error {
	return nil
}
