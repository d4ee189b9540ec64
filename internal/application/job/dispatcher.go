package job

import "context"

// Dispatch modes reported to callers.
const (
	ModeInline = "inline"
	ModeQueued = "queued"
)

// Dispatcher hands single-target tasks to whatever executes them.
type Dispatcher interface {
	// Dispatch runs or enqueues task.
	Dispatch(ctx context.Context, task Task) error

	// Mode reports whether Dispatch returns after running the task or after queueing it.
	Mode() string
}

// InlineDispatcher runs tasks on the caller's goroutine. It is used when no
// queue is configured.
type InlineDispatcher struct {
	runner *Runner
}

// NewInlineDispatcher creates an InlineDispatcher over runner.
func NewInlineDispatcher(runner *Runner) *InlineDispatcher {
	return &InlineDispatcher{runner: runner}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, task Task) error {
	return d.runner.RunTask(ctx, task)
}

func (d *InlineDispatcher) Mode() string {
	return ModeInline
}
