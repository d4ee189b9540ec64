package rule

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/domain/valueobject"
)

// CreateRuleInput represents the input for creating a rule.
type CreateRuleInput struct {
	UserID          uuid.UUID
	Name            string
	Category        string
	MerchantPattern string
	Period          string
	TargetSpend     *decimal.Decimal
	InvestType      string
	InvestAmount    *decimal.Decimal
	StreakEnabled   *bool
}

// CreateRuleOutput represents the output of rule creation.
type CreateRuleOutput struct {
	Rule *entity.Rule
}

// CreateRuleUseCase handles rule creation.
type CreateRuleUseCase struct {
	ruleRepo adapter.RuleRepository
}

// NewCreateRuleUseCase creates a new CreateRuleUseCase instance.
func NewCreateRuleUseCase(ruleRepo adapter.RuleRepository) *CreateRuleUseCase {
	return &CreateRuleUseCase{ruleRepo: ruleRepo}
}

// Execute validates and stores a new active weekly rule.
func (uc *CreateRuleUseCase) Execute(ctx context.Context, input CreateRuleInput) (*CreateRuleOutput, error) {
	if input.Category == "" || input.TargetSpend == nil || input.InvestType == "" {
		return nil, domainerror.NewRuleError(
			domainerror.ErrCodeMissingRuleFields,
			"category, target_spend and invest_type are required",
			domainerror.ErrInvalidCategory,
		)
	}

	category := valueobject.Category(strings.ToLower(strings.TrimSpace(input.Category)))
	pattern := strings.TrimSpace(input.MerchantPattern)

	var investAmount decimal.NullDecimal
	if input.InvestAmount != nil {
		investAmount = decimal.NewNullDecimal(*input.InvestAmount)
	}

	streak := true
	if input.StreakEnabled != nil {
		streak = *input.StreakEnabled
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = defaultName(category, pattern)
	}

	rule := entity.NewRule(
		input.UserID,
		name,
		category,
		pattern,
		*input.TargetSpend,
		entity.InvestType(strings.ToLower(input.InvestType)),
		investAmount,
		streak,
	)
	if input.Period != "" {
		rule.Period = entity.RulePeriod(strings.ToLower(input.Period))
	}

	if err := validateRule(rule); err != nil {
		return nil, err
	}

	if err := uc.ruleRepo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}

	return &CreateRuleOutput{Rule: rule}, nil
}
