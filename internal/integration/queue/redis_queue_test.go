package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/owninstead/backend/internal/application/job"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestDispatchAndConsume(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	q := NewRedisQueue(client, "jobs")

	if q.Mode() != job.ModeQueued {
		t.Errorf("mode = %s", q.Mode())
	}

	first := job.NewTask(job.KindWeeklyEvaluation, uuid.New())
	second := job.NewTask(job.KindTransactionSync, uuid.New())
	for _, task := range []job.Task{first, second} {
		if err := q.Dispatch(ctx, task); err != nil {
			t.Fatalf("Dispatch: %v", err)
		}
	}
	if n, _ := q.Len(ctx); n != 2 {
		t.Fatalf("len = %d, want 2", n)
	}

	var handled []job.Task
	consumer := NewConsumer(client, "jobs", func(_ context.Context, task job.Task) error {
		handled = append(handled, task)
		return nil
	})

	for i := 0; i < 2; i++ {
		took, err := consumer.ProcessOne(ctx, time.Second)
		if err != nil || !took {
			t.Fatalf("ProcessOne = %v, %v", took, err)
		}
	}

	if len(handled) != 2 || handled[0].ID != first.ID || handled[1].ID != second.ID {
		t.Fatalf("tasks handled out of order: %+v", handled)
	}
	if handled[0].Kind != job.KindWeeklyEvaluation || handled[0].TargetID != first.TargetID {
		t.Errorf("task did not round trip: %+v", handled[0])
	}
}

func TestConsumerDeadLettersFailures(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	q := NewRedisQueue(client, "jobs")

	if err := q.Dispatch(ctx, job.NewTask(job.KindTradeExecution, uuid.New())); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	mr.Lpush("jobs", "not json")

	consumer := NewConsumer(client, "jobs", func(context.Context, job.Task) error {
		return errors.New("brokerage down")
	})
	for i := 0; i < 2; i++ {
		if _, err := consumer.ProcessOne(ctx, time.Second); err != nil {
			t.Fatalf("ProcessOne: %v", err)
		}
	}

	dead, err := mr.List("jobs:failed")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(dead) != 2 {
		t.Errorf("dead letters = %d, want 2", len(dead))
	}
}

func TestConsumerDoesNotDeadLetterSkips(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	q := NewRedisQueue(client, "jobs")
	if err := q.Dispatch(ctx, job.NewTask(job.KindTradeExecution, uuid.New())); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	consumer := NewConsumer(client, "jobs", func(context.Context, job.Task) error {
		return job.Skip(errors.New("evaluation is executed"))
	})
	took, err := consumer.ProcessOne(ctx, time.Second)
	if err != nil || !took {
		t.Fatalf("ProcessOne = %v, %v", took, err)
	}
	if mr.Exists("jobs:failed") {
		t.Error("skipped task was dead-lettered")
	}
}

func TestConsumerFinishesTakenTaskAfterCancel(t *testing.T) {
	_, client := newTestClient(t)
	q := NewRedisQueue(client, "jobs")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := q.Dispatch(ctx, job.NewTask(job.KindTradeExecution, uuid.New())); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	var handlerErr error
	consumer := NewConsumer(client, "jobs", func(taskCtx context.Context, _ job.Task) error {
		cancel()
		handlerErr = taskCtx.Err()
		return nil
	})
	if _, err := consumer.ProcessOne(ctx, time.Second); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if handlerErr != nil {
		t.Errorf("task context was cancelled with the consumer: %v", handlerErr)
	}
}

func TestConsumerStartStopsOnCancel(t *testing.T) {
	_, client := newTestClient(t)
	consumer := NewConsumer(client, "jobs", func(context.Context, job.Task) error { return nil })
	consumer.blockTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
}
