package rule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

// GetRuleUseCase fetches one of the user's rules.
type GetRuleUseCase struct {
	ruleRepo adapter.RuleRepository
}

func NewGetRuleUseCase(ruleRepo adapter.RuleRepository) *GetRuleUseCase {
	return &GetRuleUseCase{ruleRepo: ruleRepo}
}

func (uc *GetRuleUseCase) Execute(ctx context.Context, userID, ruleID uuid.UUID) (*entity.Rule, error) {
	return findOwnedRule(ctx, uc.ruleRepo, userID, ruleID)
}

// findOwnedRule hides other users' rules behind the not-found error.
func findOwnedRule(ctx context.Context, repo adapter.RuleRepository, userID, ruleID uuid.UUID) (*entity.Rule, error) {
	rule, err := repo.FindByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, domainerror.ErrRuleNotFound) {
			return nil, domainerror.NewRuleError(domainerror.ErrCodeRuleNotFound, "rule not found", domainerror.ErrRuleNotFound)
		}
		return nil, fmt.Errorf("failed to find rule: %w", err)
	}
	if rule.UserID != userID {
		return nil, domainerror.NewRuleError(domainerror.ErrCodeRuleNotFound, "rule not found", domainerror.ErrRuleNotFound)
	}
	return rule, nil
}
