package job

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies a recurring job.
type Kind string

const (
	KindWeeklyEvaluation Kind = "weekly_evaluation"
	KindTradeExecution   Kind = "trade_execution"
	KindTransactionSync  Kind = "transaction_sync"
	KindOrderRefresh     Kind = "order_refresh"
)

// Kinds lists every job in the order the operator CLI shows them.
var Kinds = []Kind{KindWeeklyEvaluation, KindTradeExecution, KindTransactionSync, KindOrderRefresh}

// IsValid reports whether k is a known job.
func (k Kind) IsValid() bool {
	switch k {
	case KindWeeklyEvaluation, KindTradeExecution, KindTransactionSync, KindOrderRefresh:
		return true
	}
	return false
}

// Task is a single-target run of a job: a user for evaluation and sync, an
// evaluation for trade execution.
type Task struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	TargetID   uuid.UUID `json:"target_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewTask creates a Task for target.
func NewTask(kind Kind, target uuid.UUID) Task {
	return Task{
		ID:         uuid.New(),
		Kind:       kind,
		TargetID:   target,
		EnqueuedAt: time.Now().UTC(),
	}
}
