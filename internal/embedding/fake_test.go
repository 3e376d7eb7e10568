package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// fakeEncoder wraps the hashing encoder and records calls.
type fakeEncoder struct {
	inner   *HashingEncoder
	calls   atomic.Int64
	mu      sync.Mutex
	texts   []string
	failOn  string
	closed  atomic.Bool
	fixedFn func(text string) Vector
}

func newFakeEncoder() *fakeEncoder {
	return &fakeEncoder{inner: NewHashingEncoder(256)}
}

func (f *fakeEncoder) Encode(ctx context.Context, texts []string) ([]Vector, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.texts = append(f.texts, texts...)
	f.mu.Unlock()

	for _, t := range texts {
		if f.failOn != "" && t == f.failOn {
			return nil, errors.New("encode failed")
		}
	}
	if f.fixedFn != nil {
		out := make([]Vector, len(texts))
		for i, t := range texts {
			out[i] = f.fixedFn(t)
		}
		return out, nil
	}
	return f.inner.Encode(ctx, texts)
}

func (f *fakeEncoder) Dimension() int { return f.inner.Dimension() }

func (f *fakeEncoder) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *fakeEncoder) encodedTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

// memoryStore is an in-memory VectorStore.
type memoryStore struct {
	mu      sync.Mutex
	vectors map[string]map[string]Vector
	lookErr error
	saved   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{vectors: make(map[string]map[string]Vector)}
}

func (m *memoryStore) Lookup(_ context.Context, model string, texts []string) (map[string]Vector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookErr != nil {
		return nil, m.lookErr
	}
	out := make(map[string]Vector)
	for _, t := range texts {
		if v, ok := m.vectors[model][t]; ok {
			out[t] = v
		}
	}
	return out, nil
}

func (m *memoryStore) Save(_ context.Context, model string, vectors map[string]Vector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vectors[model] == nil {
		m.vectors[model] = make(map[string]Vector)
	}
	for t, v := range vectors {
		m.vectors[model][t] = v
		m.saved++
	}
	return nil
}
