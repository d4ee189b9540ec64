package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
)

// SkipEvaluationUseCase declines a pending evaluation.
type SkipEvaluationUseCase struct {
	evaluationRepo adapter.EvaluationRepository
}

// NewSkipEvaluationUseCase creates a new SkipEvaluationUseCase instance.
func NewSkipEvaluationUseCase(evaluationRepo adapter.EvaluationRepository) *SkipEvaluationUseCase {
	return &SkipEvaluationUseCase{evaluationRepo: evaluationRepo}
}

// Execute moves the evaluation from pending to skipped.
func (uc *SkipEvaluationUseCase) Execute(ctx context.Context, userID, evaluationID uuid.UUID) (*entity.Evaluation, error) {
	ev, err := findOwnedEvaluation(ctx, uc.evaluationRepo, userID, evaluationID)
	if err != nil {
		return nil, err
	}
	if !ev.Status.CanTransitionTo(entity.EvaluationStatusSkipped) {
		return nil, invalidTransition(ev, entity.EvaluationStatusSkipped)
	}

	from := ev.Status
	now := time.Now().UTC()
	ev.Status = entity.EvaluationStatusSkipped
	ev.SkippedAt = &now
	ev.UpdatedAt = now

	ok, err := uc.evaluationRepo.Transition(ctx, ev, from)
	if err != nil {
		return nil, fmt.Errorf("failed to skip evaluation: %w", err)
	}
	if !ok {
		return nil, statusChanged()
	}
	return ev, nil
}
