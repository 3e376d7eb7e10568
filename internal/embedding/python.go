package embedding

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"go.uber.org/zap"
)

//go:embed scripts/encode_worker.py
var encodeWorkerScript string

// maxWorkerLine bounds a single response line (a batch of vectors).
const maxWorkerLine = 64 << 20

type workerConfig struct {
	ModelName string `json:"model_name"`
	Device    string `json:"device,omitempty"`
}

type workerReady struct {
	Status       string `json:"status"`
	Kind         string `json:"kind,omitempty"`
	Error        string `json:"error,omitempty"`
	EmbeddingDim int    `json:"embedding_dim"`
}

type workerRequest struct {
	Texts []string `json:"texts"`
}

type workerResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// commandFunc builds the worker process command.
type commandFunc func(pythonBin string) *exec.Cmd

func defaultCommand(pythonBin string) *exec.Cmd {
	return exec.Command(pythonBin, "-c", encodeWorkerScript)
}

// PythonEncoder runs a sentence-transformers model in a pool of long-lived Python
// worker processes that speak line-delimited JSON over stdio.
type PythonEncoder struct {
	opts    Options
	logger  *zap.Logger
	command commandFunc
	dim     int

	idle      chan *pythonWorker
	mu        sync.Mutex
	workers   []*pythonWorker
	closed    bool
	closeOnce sync.Once
}

type pythonWorker struct {
	id      int
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	scanner *bufio.Scanner
	broken  bool
}

// NewPythonEncoder starts the worker pool and waits until every worker has loaded the model.
func NewPythonEncoder(ctx context.Context, opts Options) (*PythonEncoder, error) {
	return newPythonEncoder(ctx, opts, defaultCommand)
}

func newPythonEncoder(ctx context.Context, opts Options, command commandFunc) (*PythonEncoder, error) {
	if opts.PythonBin == "" {
		opts.PythonBin = "python3"
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	e := &PythonEncoder{
		opts:    opts,
		logger:  opts.logger().With(zap.String("model", opts.ModelName())),
		command: command,
		idle:    make(chan *pythonWorker, opts.Workers),
	}

	e.logger.Info("starting sentence-transformers workers",
		zap.Int("workers", opts.Workers),
		zap.String("device", opts.Device),
	)

	for i := 0; i < opts.Workers; i++ {
		if err := ctx.Err(); err != nil {
			_ = e.Close()
			return nil, err
		}
		w, dim, err := e.startWorker(i)
		if err != nil {
			_ = e.Close()
			return nil, err
		}
		e.dim = dim
		e.workers = append(e.workers, w)
		e.idle <- w
	}

	e.logger.Info("sentence-transformers workers ready", zap.Int("embedding_dim", e.dim))
	return e, nil
}

// startWorker launches one worker process and performs the config/ready handshake.
func (e *PythonEncoder) startWorker(id int) (*pythonWorker, int, error) {
	cmd := e.command(e.opts.PythonBin)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, 0, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, 0, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, 0, &EncoderError{Provider: ProviderSentenceTransformers, Message: "failed to start worker", Cause: err}
	}

	w := &pythonWorker{id: id, cmd: cmd, stdin: stdin}
	w.scanner = bufio.NewScanner(stdout)
	w.scanner.Buffer(make([]byte, 0, 64*1024), maxWorkerLine)

	cfg, err := json.Marshal(workerConfig{ModelName: e.opts.ModelName(), Device: e.opts.Device})
	if err != nil {
		w.kill()
		return nil, 0, fmt.Errorf("marshal config: %w", err)
	}
	if _, err := stdin.Write(append(cfg, '\n')); err != nil {
		w.kill()
		return nil, 0, fmt.Errorf("send config: %w", err)
	}

	if !w.scanner.Scan() {
		w.kill()
		return nil, 0, &EncoderError{Provider: ProviderSentenceTransformers, Message: "worker exited before ready", Cause: w.scanner.Err()}
	}

	var ready workerReady
	if err := json.Unmarshal(w.scanner.Bytes(), &ready); err != nil {
		w.kill()
		return nil, 0, fmt.Errorf("parse ready message: %w", err)
	}
	if ready.Status != "ready" {
		w.kill()
		if ready.Kind == "uninitialized_storage" {
			return nil, 0, &EncoderError{
				Provider: ProviderSentenceTransformers,
				Message:  ready.Error,
				Cause:    ErrUninitializedStorage,
			}
		}
		return nil, 0, &EncoderError{Provider: ProviderSentenceTransformers, Message: "model load failed: " + ready.Error}
	}

	e.logger.Debug("worker ready", zap.Int("worker", id), zap.Int("embedding_dim", ready.EmbeddingDim))
	return w, ready.EmbeddingDim, nil
}

// Encode sends texts to an idle worker and waits for the vectors.
func (e *PythonEncoder) Encode(ctx context.Context, texts []string) ([]Vector, error) {
	if len(texts) == 0 {
		return []Vector{}, nil
	}
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, &EncoderError{Provider: ProviderSentenceTransformers, Message: "encoder is closed"}
	}

	var w *pythonWorker
	select {
	case w = <-e.idle:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if w.broken {
		fresh, _, err := e.startWorker(w.id)
		if err != nil {
			e.idle <- w
			return nil, fmt.Errorf("restart worker %d: %w", w.id, err)
		}
		e.replace(w, fresh)
		w = fresh
	}

	type result struct {
		vecs []Vector
		err  error
	}
	done := make(chan result, 1)
	go func() {
		vecs, err := w.roundTrip(texts)
		done <- result{vecs, err}
	}()

	select {
	case r := <-done:
		if w.broken {
			e.logger.Warn("worker failed, will restart on next use", zap.Int("worker", w.id), zap.Error(r.err))
			w.kill()
		}
		e.idle <- w
		return r.vecs, r.err
	case <-ctx.Done():
		// The worker is mid-response; it cannot be reused. Wait must not run
		// until roundTrip has stopped reading stdout.
		w.signal()
		go func() {
			<-done
			_ = w.cmd.Wait()
			w.broken = true
			e.idle <- w
		}()
		return nil, ctx.Err()
	}
}

// replace swaps a restarted worker into the pool's bookkeeping.
func (e *PythonEncoder) replace(old, fresh *pythonWorker) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, w := range e.workers {
		if w == old {
			e.workers[i] = fresh
		}
	}
}

// roundTrip sends one request and reads one response. Protocol failures mark the
// worker broken; errors reported by the worker itself leave it usable.
func (w *pythonWorker) roundTrip(texts []string) ([]Vector, error) {
	req, err := json.Marshal(workerRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	if _, err := w.stdin.Write(append(req, '\n')); err != nil {
		w.broken = true
		return nil, &EncoderError{Provider: ProviderSentenceTransformers, Message: "write request", Cause: err}
	}
	if !w.scanner.Scan() {
		w.broken = true
		return nil, &EncoderError{Provider: ProviderSentenceTransformers, Message: "worker closed stdout", Cause: w.scanner.Err()}
	}

	var resp workerResponse
	if err := json.Unmarshal(w.scanner.Bytes(), &resp); err != nil {
		w.broken = true
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != "" {
		return nil, &EncoderError{Provider: ProviderSentenceTransformers, Message: resp.Error}
	}
	if len(resp.Embeddings) != len(texts) {
		w.broken = true
		return nil, &EncoderError{
			Provider: ProviderSentenceTransformers,
			Message:  fmt.Sprintf("got %d embeddings for %d texts", len(resp.Embeddings), len(texts)),
		}
	}

	out := make([]Vector, len(resp.Embeddings))
	for i, v := range resp.Embeddings {
		out[i] = Vector(v)
	}
	return out, nil
}

// signal closes stdin and kills the process without reaping it.
func (w *pythonWorker) signal() {
	_ = w.stdin.Close()
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
}

// kill stops the process and reaps it. No reads may be in flight.
func (w *pythonWorker) kill() {
	w.signal()
	_ = w.cmd.Wait()
}

// stop closes stdin so the worker exits cleanly, then waits for it.
func (w *pythonWorker) stop() error {
	if w.broken {
		return nil
	}
	_ = w.stdin.Close()
	return w.cmd.Wait()
}

// Dimension returns the model's embedding size.
func (e *PythonEncoder) Dimension() int {
	return e.dim
}

// Close stops every worker process.
func (e *PythonEncoder) Close() error {
	var firstErr error
	e.closeOnce.Do(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.closed = true
		for _, w := range e.workers {
			if err := w.stop(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	})
	return firstErr
}
