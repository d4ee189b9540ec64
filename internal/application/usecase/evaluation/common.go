package evaluation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

// findOwnedEvaluation hides other users' evaluations behind the not-found error.
func findOwnedEvaluation(ctx context.Context, repo adapter.EvaluationRepository, userID, evaluationID uuid.UUID) (*entity.Evaluation, error) {
	ev, err := repo.FindByID(ctx, evaluationID)
	if err != nil {
		if errors.Is(err, domainerror.ErrEvaluationNotFound) {
			return nil, notFound()
		}
		return nil, fmt.Errorf("failed to find evaluation: %w", err)
	}
	if ev.UserID != userID {
		return nil, notFound()
	}
	return ev, nil
}

func notFound() error {
	return domainerror.NewEvaluationError(
		domainerror.ErrCodeEvaluationNotFound,
		"evaluation not found",
		domainerror.ErrEvaluationNotFound,
	)
}

func invalidTransition(ev *entity.Evaluation, to entity.EvaluationStatus) error {
	return domainerror.NewEvaluationError(
		domainerror.ErrCodeInvalidTransition,
		fmt.Sprintf("cannot move evaluation from %s to %s", ev.Status, to),
		domainerror.ErrInvalidTransition,
	)
}

// statusChanged reports a lost compare-and-swap.
func statusChanged() error {
	return domainerror.NewEvaluationError(
		domainerror.ErrCodeInvalidTransition,
		"evaluation status changed, reload and retry",
		domainerror.ErrInvalidTransition,
	)
}
