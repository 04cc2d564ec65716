// Package clusterexec implements cluster.Clusterer by running an external
// clustering executable.
//
// Protocol: for every call the runner writes "input.json" into a working
// directory, runs
//
//	<command> <method> <dir>/input.json <dir>/output.json
//
// with the working directory as cwd, and decodes "output.json". Method is one
// of "kmeans", "hierarchical", "cut_dendrogram", "estimate_k",
// "cluster_qualities". A non-zero exit status is an error carrying the tail of
// stderr.
package clusterexec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/katalvlaran/featval/cluster"
	"github.com/katalvlaran/featval/config"
	"github.com/katalvlaran/featval/matrix"
)

const (
	inputFile  = "input.json"
	outputFile = "output.json"

	// stderrTail bounds the stderr bytes kept in an ExitError.
	stderrTail = 4 << 10
)

var (
	// ErrTimeout is returned when the executable outlives Config.Timeout.
	ErrTimeout = errors.New("clusterexec: clustering timed out")

	// ErrNoOutput is returned when the executable exits cleanly without
	// writing output.json.
	ErrNoOutput = errors.New("clusterexec: no output produced")
)

// ExitError reports a non-zero exit of the clustering executable.
type ExitError struct {
	Method string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("clusterexec: %s exited with status %d: %s", e.Method, e.Code, e.Stderr)
}

// Config configures a Runner.
type Config struct {
	// Command is the executable path.
	Command string
	// ScratchDir hosts per-call working directories when the caller gives none.
	ScratchDir string
	// MaxParallel bounds concurrent invocations; < 1 means 1.
	MaxParallel int
	// Timeout bounds one invocation; 0 means no limit.
	Timeout time.Duration
}

// FromConfig extracts the runner settings from the service configuration.
func FromConfig(c config.Config) Config {
	return Config{
		Command:     c.ClustererPath(),
		ScratchDir:  c.ScratchDir,
		MaxParallel: c.Clusterer.MaxParallel,
		Timeout:     c.Clusterer.Timeout,
	}
}

// Runner is a subprocess cluster.Clusterer. Safe for concurrent use.
type Runner struct {
	cfg    Config
	sem    *semaphore.Weighted
	logger *slog.Logger
}

var _ cluster.Clusterer = (*Runner)(nil)

// New returns a Runner. A nil logger uses slog.Default().
func New(cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxParallel < 1 {
		cfg.MaxParallel = 1
	}

	return &Runner{cfg: cfg, sem: semaphore.NewWeighted(int64(cfg.MaxParallel)), logger: logger}
}

// request is the input.json document.
type request struct {
	Method     string                `json:"method"`
	Matrix     *matrix.FeatureMatrix `json:"matrix"`
	Params     any                   `json:"params,omitempty"`
	Labels     []int                 `json:"cluster_labels,omitempty"`
	Dendrogram string                `json:"dendrogram,omitempty"`
	Height     *float64              `json:"height_cutoff,omitempty"`
}

// response is the output.json document; each method fills its own subset.
type response struct {
	cluster.LabelVector
	Dendrogram string `json:"dendrogram,omitempty"`
	cluster.EstimateKResult
}

// KMeans implements cluster.Clusterer.
func (r *Runner) KMeans(ctx context.Context, m *matrix.FeatureMatrix, p cluster.KMeansParams, workDir string) (cluster.LabelVector, error) {
	if err := p.Validate(); err != nil {
		return cluster.LabelVector{}, err
	}
	resp, err := r.call(ctx, workDir, request{Method: "kmeans", Matrix: m, Params: p})
	if err != nil {
		return cluster.LabelVector{}, err
	}

	return resp.LabelVector, nil
}

// Hierarchical implements cluster.Clusterer.
func (r *Runner) Hierarchical(ctx context.Context, m *matrix.FeatureMatrix, p cluster.HierarchicalParams, workDir string) (cluster.LabelVector, string, error) {
	resp, err := r.call(ctx, workDir, request{Method: "hierarchical", Matrix: m, Params: p})
	if err != nil {
		return cluster.LabelVector{}, "", err
	}

	return resp.LabelVector, resp.Dendrogram, nil
}

// CutDendrogram implements cluster.Clusterer.
func (r *Runner) CutDendrogram(ctx context.Context, m *matrix.FeatureMatrix, dendrogram string, height float64, workDir string) (cluster.LabelVector, string, error) {
	resp, err := r.call(ctx, workDir, request{Method: "cut_dendrogram", Matrix: m, Dendrogram: dendrogram, Height: &height})
	if err != nil {
		return cluster.LabelVector{}, "", err
	}

	return resp.LabelVector, resp.Dendrogram, nil
}

// EstimateK implements cluster.Clusterer.
func (r *Runner) EstimateK(ctx context.Context, m *matrix.FeatureMatrix, p cluster.EstimateKParams, workDir string) (cluster.EstimateKResult, error) {
	if err := p.Validate(); err != nil {
		return cluster.EstimateKResult{}, err
	}
	resp, err := r.call(ctx, workDir, request{Method: "estimate_k", Matrix: m, Params: p})
	if err != nil {
		return cluster.EstimateKResult{}, err
	}

	return resp.EstimateKResult, nil
}

// EstimateKNew implements cluster.Clusterer.
func (r *Runner) EstimateKNew(ctx context.Context, m *matrix.FeatureMatrix, p cluster.EstimateKNewParams, workDir string) (cluster.EstimateKResult, error) {
	if err := p.Validate(); err != nil {
		return cluster.EstimateKResult{}, err
	}
	resp, err := r.call(ctx, workDir, request{Method: "estimate_k_new", Matrix: m, Params: p})
	if err != nil {
		return cluster.EstimateKResult{}, err
	}

	return resp.EstimateKResult, nil
}

// ClusterQualities implements cluster.Clusterer.
func (r *Runner) ClusterQualities(ctx context.Context, m *matrix.FeatureMatrix, labels []int, workDir string) (cluster.LabelVector, error) {
	resp, err := r.call(ctx, workDir, request{Method: "cluster_qualities", Matrix: m, Labels: labels})
	if err != nil {
		return cluster.LabelVector{}, err
	}
	if resp.Labels == nil {
		resp.Labels = append([]int(nil), labels...)
	}

	return resp.LabelVector, nil
}

// call runs one invocation.
//
// Stage 1: wait for a concurrency slot.
// Stage 2: prepare the working directory (a fresh one under ScratchDir when
// workDir is empty, removed afterwards).
// Stage 3: write input, execute with timeout, read output.
func (r *Runner) call(ctx context.Context, workDir string, req request) (*response, error) {
	if req.Matrix == nil {
		return nil, fmt.Errorf("clusterexec: %s: %w", req.Method, matrix.ErrNilMatrix)
	}

	// Stage 1
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("clusterexec: %s: waiting for slot: %w", req.Method, err)
	}
	defer r.sem.Release(1)

	// Stage 2
	owned := workDir == ""
	if owned {
		workDir = filepath.Join(r.cfg.ScratchDir, "cluster-"+uuid.NewString())
	}
	if err := os.MkdirAll(workDir, 0o750); err != nil {
		return nil, fmt.Errorf("clusterexec: work dir: %w", err)
	}
	if owned {
		defer func() {
			if err := os.RemoveAll(workDir); err != nil {
				r.logger.Warn("clusterexec: cleanup failed", slog.String("dir", workDir), slog.String("error", err.Error()))
			}
		}()
	}

	// Stage 3
	in, out := filepath.Join(workDir, inputFile), filepath.Join(workDir, outputFile)
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("clusterexec: encode input: %w", err)
	}
	if err = os.WriteFile(in, body, 0o640); err != nil {
		return nil, fmt.Errorf("clusterexec: write input: %w", err)
	}
	_ = os.Remove(out)

	if err = r.execute(ctx, workDir, req.Method, in, out); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(out)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("clusterexec: %s: %w", req.Method, ErrNoOutput)
	}
	if err != nil {
		return nil, fmt.Errorf("clusterexec: read output: %w", err)
	}
	resp := new(response)
	if err = json.Unmarshal(raw, resp); err != nil {
		return nil, fmt.Errorf("clusterexec: %s: decode output: %w", req.Method, err)
	}

	return resp, nil
}

func (r *Runner) execute(ctx context.Context, dir, method, in, out string) error {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.cfg.Command, method, in, out)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	r.logger.Debug("clusterexec: running",
		slog.String("command", r.cfg.Command),
		slog.String("method", method),
		slog.String("dir", dir),
	)
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			r.logger.Warn("clusterexec: timed out",
				slog.String("method", method), slog.Duration("elapsed", elapsed))
			return fmt.Errorf("clusterexec: %s: %w: %w", method, ErrTimeout, ctxErr)
		}
		return fmt.Errorf("clusterexec: %s: %w", method, ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Method: method, Code: exitErr.ExitCode(), Stderr: tail(stderr.Bytes(), stderrTail)}
		}
		return fmt.Errorf("clusterexec: %s: %w", method, err)
	}

	r.logger.Info("clusterexec: done",
		slog.String("method", method),
		slog.Duration("duration", elapsed),
		slog.Int("stdout_bytes", stdout.Len()),
	)

	return nil
}

func tail(b []byte, n int) string {
	b = bytes.TrimSpace(b)
	if len(b) > n {
		b = b[len(b)-n:]
	}

	return string(b)
}
