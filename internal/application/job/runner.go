package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	jobMeter       = otel.Meter("own-instead/jobs")
	jobItems, _    = jobMeter.Int64Counter("jobs.items.total", metric.WithDescription("Items processed by batch jobs, by status"))
	jobDuration, _ = jobMeter.Float64Histogram("jobs.run.duration", metric.WithDescription("Job run duration in seconds"), metric.WithUnit("s"))
)

var (
	// ErrUnknownJob is returned for a kind without a registered handler.
	ErrUnknownJob = errors.New("unknown job")

	// ErrAlreadyRunning is returned when a batch of the same kind is in progress.
	ErrAlreadyRunning = errors.New("job already running")

	// ErrSkipped marks a task that ran but had nothing it was allowed to do.
	ErrSkipped = errors.New("task skipped")
)

// Skip wraps reason so callers can tell a skipped task from a failed one
// while still reading the reason with errors.As.
func Skip(reason error) error {
	return fmt.Errorf("%w: %w", ErrSkipped, reason)
}

// BatchFunc processes every eligible item of a job.
type BatchFunc func(ctx context.Context) (Result, error)

// TargetFunc processes one item of a job.
type TargetFunc func(ctx context.Context, target uuid.UUID) error

type handler struct {
	batch  BatchFunc
	target TargetFunc
}

// Runner executes registered jobs. Batches of the same kind never overlap.
type Runner struct {
	mu       sync.Mutex
	handlers map[Kind]handler
	running  map[Kind]bool
	timeout  time.Duration
}

// NewRunner creates a Runner. Each run is bounded by timeout when positive.
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{
		handlers: make(map[Kind]handler),
		running:  make(map[Kind]bool),
		timeout:  timeout,
	}
}

// Handle registers the batch and single-target forms of kind. target may be nil.
func (r *Runner) Handle(kind Kind, batch BatchFunc, target TargetFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = handler{batch: batch, target: target}
}

// RunBatch runs the batch form of kind.
func (r *Runner) RunBatch(ctx context.Context, kind Kind) (Result, error) {
	h, err := r.acquire(kind)
	if err != nil {
		return Result{}, err
	}
	defer r.release(kind)
	if h.batch == nil {
		return Result{}, fmt.Errorf("%w: %s has no batch form", ErrUnknownJob, kind)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	result, err := h.batch(ctx)
	elapsed := time.Since(start)

	kindAttr := attribute.String("job", string(kind))
	jobDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(kindAttr, attribute.String("mode", "batch")))
	record(ctx, kind, "success", result.Succeeded)
	record(ctx, kind, "skipped", result.Skipped)
	record(ctx, kind, "error", result.Failed)

	attrs := append([]any{"job", kind, "duration", elapsed.String()}, result.LogAttrs()...)
	if err != nil {
		slog.Error("Job run aborted", append(attrs, "error", err)...)
		return result, err
	}
	slog.Info("Job run completed", attrs...)
	return result, nil
}

// RunTask runs the single-target form of task.Kind. A skipped task still
// returns its ErrSkipped error so inline callers can report why.
func (r *Runner) RunTask(ctx context.Context, task Task) error {
	r.mu.Lock()
	h, ok := r.handlers[task.Kind]
	r.mu.Unlock()
	if !ok || h.target == nil {
		return fmt.Errorf("%w: %s", ErrUnknownJob, task.Kind)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	logger := slog.With("job", task.Kind, "task_id", task.ID, "target_id", task.TargetID)
	start := time.Now()
	err := h.target(ctx, task.TargetID)
	jobDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("job", string(task.Kind)),
		attribute.String("mode", "task"),
	))

	switch {
	case errors.Is(err, ErrSkipped):
		record(ctx, task.Kind, "skipped", 1)
		logger.Info("Task skipped", "reason", err)
		return err
	case err != nil:
		record(ctx, task.Kind, "error", 1)
		logger.Error("Task failed", "error", err)
		return err
	}
	record(ctx, task.Kind, "success", 1)
	logger.Info("Task completed")
	return nil
}

// Registered returns the kinds with a handler, in Kinds order.
func (r *Runner) Registered() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, 0, len(r.handlers))
	for _, k := range Kinds {
		if _, ok := r.handlers[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

func (r *Runner) acquire(kind Kind) (handler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[kind]
	if !ok {
		return handler{}, fmt.Errorf("%w: %s", ErrUnknownJob, kind)
	}
	if r.running[kind] {
		return handler{}, fmt.Errorf("%w: %s", ErrAlreadyRunning, kind)
	}
	r.running[kind] = true
	return h, nil
}

func (r *Runner) release(kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.running, kind)
}

func (r *Runner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func record(ctx context.Context, kind Kind, status string, n int) {
	if n == 0 {
		return
	}
	jobItems.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("job", string(kind)),
		attribute.String("status", status),
	))
}
