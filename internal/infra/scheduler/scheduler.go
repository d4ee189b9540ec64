// Package scheduler runs the recurring jobs at their configured UTC wall-clock times.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/owninstead/backend/internal/application/job"
)

// BatchRunner runs the batch form of a job.
type BatchRunner interface {
	RunBatch(ctx context.Context, kind job.Kind) (job.Result, error)
}

type entry struct {
	kind     job.Kind
	schedule Schedule
	lastRun  string
}

// Scheduler checks every tick which jobs are due and runs them.
type Scheduler struct {
	runner       BatchRunner
	tick         time.Duration
	runOnStartup bool
	now          func() time.Time

	mu      sync.Mutex
	entries []*entry

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler that checks schedules every tick.
func New(runner BatchRunner, tick time.Duration, runOnStartup bool) *Scheduler {
	if tick <= 0 {
		tick = 30 * time.Second
	}
	return &Scheduler{
		runner:       runner,
		tick:         tick,
		runOnStartup: runOnStartup,
		now:          time.Now,
	}
}

// Register adds kind with the schedule spec.
func (s *Scheduler) Register(kind job.Kind, spec string) error {
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return fmt.Errorf("failed to parse schedule for %s: %w", kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, &entry{kind: kind, schedule: schedule})
	slog.Info("Scheduled job", "job", kind, "schedule", schedule.String())
	return nil
}

// Start launches the scheduling loop in the background.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	if s.runOnStartup {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for _, kind := range s.kinds() {
				s.run(ctx, kind)
			}
		}()
	}

	s.wg.Add(1)
	go s.loop(ctx)

	for kind, next := range s.NextRuns() {
		slog.Info("Next scheduled run", "job", kind, "at", next.Format(time.RFC3339))
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler loop stopped")
			return
		case <-ticker.C:
			s.RunDue(ctx)
		}
	}
}

// RunDue starts every job due at the current minute that has not run in it yet.
// Each due job runs on its own goroutine.
func (s *Scheduler) RunDue(ctx context.Context) []job.Kind {
	now := s.now().UTC()
	key := now.Format("2006-01-02T15:04")

	var due []job.Kind
	s.mu.Lock()
	for _, e := range s.entries {
		if e.lastRun == key || !e.schedule.Due(now) {
			continue
		}
		e.lastRun = key
		due = append(due, e.kind)
	}
	s.mu.Unlock()

	for _, kind := range due {
		s.wg.Add(1)
		go func(kind job.Kind) {
			defer s.wg.Done()
			s.run(ctx, kind)
		}(kind)
	}
	return due
}

func (s *Scheduler) run(ctx context.Context, kind job.Kind) {
	slog.Info("Scheduler triggered job", "job", kind)
	if _, err := s.runner.RunBatch(ctx, kind); err != nil {
		if errors.Is(err, job.ErrAlreadyRunning) {
			slog.Warn("Skipping scheduled run, previous run still active", "job", kind)
			return
		}
		slog.Error("Scheduled job failed", "job", kind, "error", err)
	}
}

// NextRuns returns the next due time of every registered job.
func (s *Scheduler) NextRuns() map[job.Kind]time.Time {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[job.Kind]time.Time, len(s.entries))
	for _, e := range s.entries {
		out[e.kind] = e.schedule.Next(now)
	}
	return out
}

func (s *Scheduler) kinds() []job.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]job.Kind, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.kind
	}
	return out
}

// Shutdown stops the loop and waits up to timeout for running jobs.
func (s *Scheduler) Shutdown(timeout time.Duration) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Scheduler stopped")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("scheduler shutdown timed out after %s", timeout)
	}
}
