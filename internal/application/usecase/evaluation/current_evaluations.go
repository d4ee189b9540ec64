package evaluation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
)

// CurrentEvaluationsUseCase returns the pending evaluations awaiting review.
type CurrentEvaluationsUseCase struct {
	evaluationRepo adapter.EvaluationRepository
}

// NewCurrentEvaluationsUseCase creates a new CurrentEvaluationsUseCase instance.
func NewCurrentEvaluationsUseCase(evaluationRepo adapter.EvaluationRepository) *CurrentEvaluationsUseCase {
	return &CurrentEvaluationsUseCase{evaluationRepo: evaluationRepo}
}

// Execute returns the pending evaluations of the most recent pending period.
// Older pending weeks stay reachable through the list endpoint.
func (uc *CurrentEvaluationsUseCase) Execute(ctx context.Context, userID uuid.UUID) ([]*entity.Evaluation, error) {
	pending, err := uc.evaluationRepo.FindPendingByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending evaluations: %w", err)
	}
	if len(pending) == 0 {
		return []*entity.Evaluation{}, nil
	}

	latest := pending[0].PeriodStart
	for _, ev := range pending[1:] {
		if ev.PeriodStart.After(latest) {
			latest = ev.PeriodStart
		}
	}

	current := make([]*entity.Evaluation, 0, len(pending))
	for _, ev := range pending {
		if ev.PeriodStart.Equal(latest) {
			current = append(current, ev)
		}
	}
	return current, nil
}
