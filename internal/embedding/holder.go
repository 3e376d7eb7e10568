package embedding

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Builder constructs a ready-to-use scorer.
type Builder func(ctx context.Context) (*Scorer, error)

// Holder owns the process-wide scorer. It builds the scorer at most once per successful
// construction: concurrent callers of Get share a single in-flight build, and every caller
// observes the same instance afterwards. A failed build is not cached, so the next Get retries.
type Holder struct {
	build  Builder
	group  singleflight.Group
	scorer atomic.Pointer[Scorer]
	builds atomic.Int64
	logger *zap.Logger
}

// NewHolder creates a holder that uses build to construct the scorer.
func NewHolder(build Builder, logger *zap.Logger) *Holder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Holder{build: build, logger: logger}
}

// Get returns the scorer, building it on first use.
func (h *Holder) Get(ctx context.Context) (*Scorer, error) {
	if s := h.scorer.Load(); s != nil {
		return s, nil
	}

	v, err, shared := h.group.Do("scorer", func() (any, error) {
		if s := h.scorer.Load(); s != nil {
			return s, nil
		}
		// Detach from the first caller's cancellation; other callers share this build.
		s, err := h.build(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		h.builds.Add(1)
		h.scorer.Store(s)
		return s, nil
	})
	if err != nil {
		h.logger.Error("failed to build embedding scorer", zap.Error(err))
		return nil, err
	}
	if shared {
		h.logger.Debug("joined in-flight scorer build")
	}
	return v.(*Scorer), nil
}

// Ready reports whether the scorer has been built.
func (h *Holder) Ready() bool {
	return h.scorer.Load() != nil
}

// Builds returns the number of successful constructions.
func (h *Holder) Builds() int64 {
	return h.builds.Load()
}

// Close releases the scorer if it was built.
func (h *Holder) Close() error {
	if s := h.scorer.Swap(nil); s != nil {
		return s.Close()
	}
	return nil
}
