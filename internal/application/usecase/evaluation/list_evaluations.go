package evaluation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

// ListEvaluationsInput represents the input for listing evaluations.
type ListEvaluationsInput struct {
	UserID   uuid.UUID
	RuleID   *uuid.UUID
	Status   string
	Page     int
	PageSize int
}

// ListEvaluationsOutput represents the output of listing evaluations.
type ListEvaluationsOutput struct {
	Evaluations []*entity.Evaluation
	Total       int64
	Page        int
	PageSize    int
}

// ListEvaluationsUseCase handles listing a user's evaluations.
type ListEvaluationsUseCase struct {
	evaluationRepo adapter.EvaluationRepository
}

// NewListEvaluationsUseCase creates a new ListEvaluationsUseCase instance.
func NewListEvaluationsUseCase(evaluationRepo adapter.EvaluationRepository) *ListEvaluationsUseCase {
	return &ListEvaluationsUseCase{evaluationRepo: evaluationRepo}
}

// Execute lists evaluations, newest period first.
func (uc *ListEvaluationsUseCase) Execute(ctx context.Context, input ListEvaluationsInput) (*ListEvaluationsOutput, error) {
	filter := adapter.EvaluationFilter{UserID: input.UserID, RuleID: input.RuleID}
	if input.Status != "" {
		status := entity.EvaluationStatus(input.Status)
		if !status.IsValid() {
			return nil, domainerror.NewEvaluationError(
				domainerror.ErrCodeInvalidEvaluationStatus,
				fmt.Sprintf("unknown status %q", input.Status),
				domainerror.ErrInvalidEvaluationStatus,
			)
		}
		filter.Status = &status
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	result, err := uc.evaluationRepo.FindByFilter(ctx, filter, adapter.Pagination{Page: page, PageSize: pageSize})
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}

	evaluations := result.Evaluations
	if evaluations == nil {
		evaluations = []*entity.Evaluation{}
	}
	return &ListEvaluationsOutput{
		Evaluations: evaluations,
		Total:       result.Total,
		Page:        page,
		PageSize:    pageSize,
	}, nil
}
