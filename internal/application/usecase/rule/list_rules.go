package rule

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
)

// ListRulesOutput represents the output of listing rules.
type ListRulesOutput struct {
	Rules []*entity.Rule
}

// ListRulesUseCase lists a user's rules.
type ListRulesUseCase struct {
	ruleRepo adapter.RuleRepository
}

func NewListRulesUseCase(ruleRepo adapter.RuleRepository) *ListRulesUseCase {
	return &ListRulesUseCase{ruleRepo: ruleRepo}
}

func (uc *ListRulesUseCase) Execute(ctx context.Context, userID uuid.UUID) (*ListRulesOutput, error) {
	rules, err := uc.ruleRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	if rules == nil {
		rules = []*entity.Rule{}
	}
	return &ListRulesOutput{Rules: rules}, nil
}
