package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// OpenEncoder builds an encoder with factory. If construction fails because the model
// storage could not be initialized on the requested device, it retries exactly once
// with the device forced to CPU.
func OpenEncoder(ctx context.Context, factory Factory, opts Options) (Encoder, error) {
	if factory == nil {
		factory = NewEncoder
	}
	log := opts.logger()

	enc, err := factory(ctx, opts)
	if err == nil {
		return enc, nil
	}
	if !IsUninitializedStorage(err) || opts.Device == DeviceCPU {
		return nil, err
	}

	log.Warn("encoder construction hit uninitialized model storage, retrying on cpu",
		zap.String("model", opts.ModelName()),
		zap.String("device", opts.Device),
		zap.Error(err),
	)

	cpuOpts := opts
	cpuOpts.Device = DeviceCPU
	enc, retryErr := factory(ctx, cpuOpts)
	if retryErr != nil {
		return nil, fmt.Errorf("cpu fallback failed after %v: %w", err, retryErr)
	}
	return enc, nil
}

// IsUninitializedStorage reports whether err is a meta-tensor / uninitialized storage failure.
func IsUninitializedStorage(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUninitializedStorage) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "meta tensor") || strings.Contains(msg, "Cannot copy out of meta")
}
