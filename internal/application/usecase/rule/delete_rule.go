package rule

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
)

// DeleteRuleUseCase removes a rule. Its evaluations and orders stay as history.
type DeleteRuleUseCase struct {
	ruleRepo adapter.RuleRepository
}

func NewDeleteRuleUseCase(ruleRepo adapter.RuleRepository) *DeleteRuleUseCase {
	return &DeleteRuleUseCase{ruleRepo: ruleRepo}
}

func (uc *DeleteRuleUseCase) Execute(ctx context.Context, userID, ruleID uuid.UUID) error {
	if _, err := findOwnedRule(ctx, uc.ruleRepo, userID, ruleID); err != nil {
		return err
	}
	if err := uc.ruleRepo.Delete(ctx, ruleID); err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil
}
