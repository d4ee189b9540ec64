package rule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	"github.com/owninstead/backend/internal/domain/valueobject"
)

// UpdateRuleInput is a partial update; nil fields are left unchanged.
type UpdateRuleInput struct {
	UserID            uuid.UUID
	RuleID            uuid.UUID
	Name              *string
	Category          *string
	MerchantPattern   *string
	TargetSpend       *decimal.Decimal
	InvestType        *string
	InvestAmount      *decimal.Decimal
	ClearInvestAmount bool
	StreakEnabled     *bool
	IsActive          *bool
}

// UpdateRuleOutput represents the output of a rule update.
type UpdateRuleOutput struct {
	Rule *entity.Rule
}

// UpdateRuleUseCase applies a partial update to a rule.
type UpdateRuleUseCase struct {
	ruleRepo adapter.RuleRepository
}

func NewUpdateRuleUseCase(ruleRepo adapter.RuleRepository) *UpdateRuleUseCase {
	return &UpdateRuleUseCase{ruleRepo: ruleRepo}
}

// Execute applies the update. Existing evaluations keep the values they were computed with.
func (uc *UpdateRuleUseCase) Execute(ctx context.Context, input UpdateRuleInput) (*UpdateRuleOutput, error) {
	rule, err := findOwnedRule(ctx, uc.ruleRepo, input.UserID, input.RuleID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		rule.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		rule.Category = valueobject.Category(strings.ToLower(strings.TrimSpace(*input.Category)))
	}
	if input.MerchantPattern != nil {
		rule.MerchantPattern = strings.TrimSpace(*input.MerchantPattern)
	}
	if input.TargetSpend != nil {
		rule.TargetSpend = *input.TargetSpend
	}
	if input.InvestType != nil {
		rule.InvestType = entity.InvestType(strings.ToLower(*input.InvestType))
	}
	if input.ClearInvestAmount {
		rule.InvestAmount = decimal.NullDecimal{}
	}
	if input.InvestAmount != nil {
		rule.InvestAmount = decimal.NewNullDecimal(*input.InvestAmount)
	}
	if input.StreakEnabled != nil {
		rule.StreakEnabled = *input.StreakEnabled
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}
	if rule.Name == "" {
		rule.Name = defaultName(rule.Category, rule.MerchantPattern)
	}

	if err := validateRule(rule); err != nil {
		return nil, err
	}

	rule.UpdatedAt = time.Now().UTC()
	if err := uc.ruleRepo.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}

	return &UpdateRuleOutput{Rule: rule}, nil
}
