package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/entity"
)

// EvaluationFilter defines filter options for listing evaluations.
type EvaluationFilter struct {
	UserID uuid.UUID
	RuleID *uuid.UUID
	Status *entity.EvaluationStatus
}

// Pagination defines page-based pagination options.
type Pagination struct {
	Page     int
	PageSize int
}

// Offset returns the number of rows to skip.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// EvaluationListResult represents the result of listing evaluations.
type EvaluationListResult struct {
	Evaluations []*entity.Evaluation
	Total       int64
	Page        int
	PageSize    int
}

// EvaluationRepository defines the interface for evaluation persistence operations.
// Status changes are conditional updates so concurrent writers cannot both win.
type EvaluationRepository interface {
	// CreateIfAbsent inserts the evaluation unless one already exists for
	// (rule_id, period_start). Returns false when the row already existed.
	CreateIfAbsent(ctx context.Context, evaluation *entity.Evaluation) (bool, error)

	// FindByID retrieves an evaluation by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Evaluation, error)

	// FindByFilter retrieves evaluations based on filter criteria with pagination, newest period first.
	FindByFilter(ctx context.Context, filter EvaluationFilter, pagination Pagination) (*EvaluationListResult, error)

	// FindLatestByRule retrieves the evaluation with the latest period for a rule.
	FindLatestByRule(ctx context.Context, ruleID uuid.UUID) (*entity.Evaluation, error)

	// FindPendingByUser retrieves a user's pending evaluations, newest period first.
	FindPendingByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Evaluation, error)

	// FindConfirmedWithInvest retrieves every confirmed evaluation with final_invest > 0.
	FindConfirmedWithInvest(ctx context.Context) ([]*entity.Evaluation, error)

	// SumOpenSince sums final_invest of a user's pending and confirmed
	// evaluations created at or after since, leaving out except.
	SumOpenSince(ctx context.Context, userID uuid.UUID, since time.Time, except uuid.UUID) (decimal.Decimal, error)

	// Transition persists evaluation's status, amounts and timestamps only if the
	// stored status still equals from. Returns false when another writer got there first.
	Transition(ctx context.Context, evaluation *entity.Evaluation, from entity.EvaluationStatus) (bool, error)
}
