// Package queue carries single-target job tasks over a Redis list.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/owninstead/backend/internal/application/job"
)

// RedisQueue is a job.Dispatcher that pushes tasks onto a Redis list.
type RedisQueue struct {
	client redis.UniversalClient
	name   string
}

// NewRedisQueue creates a new RedisQueue over the list name.
func NewRedisQueue(client redis.UniversalClient, name string) *RedisQueue {
	return &RedisQueue{client: client, name: name}
}

// Dispatch enqueues task.
func (q *RedisQueue) Dispatch(ctx context.Context, task job.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}
	if err := q.client.LPush(ctx, q.name, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	slog.Info("Queued task", "task_id", task.ID, "job", task.Kind, "target_id", task.TargetID)
	return nil
}

func (q *RedisQueue) Mode() string {
	return job.ModeQueued
}

// Len returns the number of waiting tasks.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.name).Result()
}

// Handler processes one task.
type Handler func(ctx context.Context, task job.Task) error

// Consumer pops tasks from the list and hands them to a Handler. Failed and
// undecodable tasks are moved to a dead-letter list.
type Consumer struct {
	client       redis.UniversalClient
	name         string
	deadLetter   string
	handler      Handler
	blockTimeout time.Duration
	wg           sync.WaitGroup
}

// NewConsumer creates a new Consumer over the list name.
func NewConsumer(client redis.UniversalClient, name string, handler Handler) *Consumer {
	return &Consumer{
		client:       client,
		name:         name,
		deadLetter:   name + ":failed",
		handler:      handler,
		blockTimeout: 5 * time.Second,
	}
}

// Start consumes tasks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	c.wg.Add(1)
	defer c.wg.Done()

	slog.Info("Queue consumer started", "queue", c.name)
	for {
		if ctx.Err() != nil {
			slog.Info("Queue consumer shutting down", "queue", c.name)
			return
		}
		if _, err := c.ProcessOne(ctx, c.blockTimeout); err != nil && ctx.Err() == nil {
			slog.Error("Failed to read from queue", "queue", c.name, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// Wait blocks until Start has returned.
func (c *Consumer) Wait() {
	c.wg.Wait()
}

// ProcessOne waits up to timeout for a task and handles it. It reports whether
// a task was taken. Handler failures are dead-lettered, not returned; skipped
// tasks are only logged.
func (c *Consumer) ProcessOne(ctx context.Context, timeout time.Duration) (bool, error) {
	res, err := c.client.BRPop(ctx, timeout, c.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	// BRPOP returns [list, value].
	payload := res[1]

	var task job.Task
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		slog.Error("Dropping undecodable task", "queue", c.name, "error", err)
		c.bury(ctx, payload)
		return true, nil
	}

	// The task is off the list now, so it runs to the end even during shutdown.
	ctx = context.WithoutCancel(ctx)
	err = c.handler(ctx, task)
	switch {
	case errors.Is(err, job.ErrSkipped):
		slog.Info("Task skipped", "task_id", task.ID, "job", task.Kind, "reason", err)
	case err != nil:
		slog.Error("Task failed", "task_id", task.ID, "job", task.Kind, "error", err)
		c.bury(ctx, payload)
	}
	return true, nil
}

func (c *Consumer) bury(ctx context.Context, payload string) {
	if err := c.client.LPush(ctx, c.deadLetter, payload).Err(); err != nil {
		slog.Error("Failed to dead-letter task", "queue", c.deadLetter, "error", err)
	}
}

var _ job.Dispatcher = (*RedisQueue)(nil)
