package rule

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/usecase/usecasetest"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

func ptr[T any](v T) *T { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateRule(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	tests := []struct {
		name    string
		input   CreateRuleInput
		wantErr error
	}{
		{
			name:  "difference rule on a category",
			input: CreateRuleInput{Category: "coffee", TargetSpend: dec("25"), InvestType: "difference"},
		},
		{
			name:  "fixed custom rule",
			input: CreateRuleInput{Category: "custom", MerchantPattern: "Chipotle", TargetSpend: dec("40"), InvestType: "fixed", InvestAmount: dec("15")},
		},
		{
			name:    "missing fields",
			input:   CreateRuleInput{Category: "coffee"},
			wantErr: domainerror.ErrInvalidCategory,
		},
		{
			name:    "unknown category",
			input:   CreateRuleInput{Category: "groceries", TargetSpend: dec("25"), InvestType: "difference"},
			wantErr: domainerror.ErrInvalidCategory,
		},
		{
			name:    "custom without pattern",
			input:   CreateRuleInput{Category: "custom", TargetSpend: dec("25"), InvestType: "difference"},
			wantErr: domainerror.ErrMerchantPatternRequired,
		},
		{
			name:    "pattern too long",
			input:   CreateRuleInput{Category: "custom", MerchantPattern: strings.Repeat("x", 101), TargetSpend: dec("25"), InvestType: "difference"},
			wantErr: domainerror.ErrMerchantPatternTooLong,
		},
		{
			name:    "negative target",
			input:   CreateRuleInput{Category: "bars", TargetSpend: dec("-1"), InvestType: "difference"},
			wantErr: domainerror.ErrInvalidTargetSpend,
		},
		{
			name:    "target above limit",
			input:   CreateRuleInput{Category: "bars", TargetSpend: dec("10000.01"), InvestType: "difference"},
			wantErr: domainerror.ErrInvalidTargetSpend,
		},
		{
			name:    "fixed without amount",
			input:   CreateRuleInput{Category: "bars", TargetSpend: dec("60"), InvestType: "fixed"},
			wantErr: domainerror.ErrInvestAmountRequired,
		},
		{
			name:    "invest amount too large",
			input:   CreateRuleInput{Category: "bars", TargetSpend: dec("60"), InvestType: "fixed", InvestAmount: dec("1001")},
			wantErr: domainerror.ErrInvalidInvestAmount,
		},
		{
			name:    "unknown invest type",
			input:   CreateRuleInput{Category: "bars", TargetSpend: dec("60"), InvestType: "percent"},
			wantErr: domainerror.ErrInvalidInvestType,
		},
		{
			name:    "monthly period",
			input:   CreateRuleInput{Category: "bars", TargetSpend: dec("60"), InvestType: "difference", Period: "monthly"},
			wantErr: domainerror.ErrInvalidRulePeriod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := usecasetest.NewRuleRepository()
			uc := NewCreateRuleUseCase(repo)
			tt.input.UserID = userID

			out, err := uc.Execute(ctx, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if len(repo.Rules) != 0 {
					t.Error("invalid rule was stored")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !out.Rule.IsActive || !out.Rule.StreakEnabled || out.Rule.Period != entity.RulePeriodWeekly {
				t.Errorf("unexpected defaults %+v", out.Rule)
			}
			if out.Rule.Name == "" {
				t.Error("expected a default name")
			}
		})
	}
}

func TestRuleOwnership(t *testing.T) {
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()
	repo := usecasetest.NewRuleRepository()

	created, err := NewCreateRuleUseCase(repo).Execute(ctx, CreateRuleInput{
		UserID: owner, Category: "delivery", TargetSpend: dec("50"), InvestType: "difference",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created.Rule.ID

	if _, err := NewGetRuleUseCase(repo).Execute(ctx, stranger, id); !errors.Is(err, domainerror.ErrRuleNotFound) {
		t.Errorf("stranger get err = %v", err)
	}
	if err := NewDeleteRuleUseCase(repo).Execute(ctx, stranger, id); !errors.Is(err, domainerror.ErrRuleNotFound) {
		t.Errorf("stranger delete err = %v", err)
	}

	update := NewUpdateRuleUseCase(repo)
	out, err := update.Execute(ctx, UpdateRuleInput{
		UserID:       owner,
		RuleID:       id,
		InvestType:   ptr("fixed"),
		InvestAmount: dec("20"),
		IsActive:     ptr(false),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if out.Rule.InvestType != entity.InvestTypeFixed || out.Rule.IsActive {
		t.Errorf("unexpected updated rule %+v", out.Rule)
	}

	if _, err := update.Execute(ctx, UpdateRuleInput{UserID: owner, RuleID: id, ClearInvestAmount: true}); !errors.Is(err, domainerror.ErrInvestAmountRequired) {
		t.Errorf("clearing the amount of a fixed rule err = %v", err)
	}

	list, _ := NewListRulesUseCase(repo).Execute(ctx, owner)
	if len(list.Rules) != 1 {
		t.Fatalf("rules = %d, want 1", len(list.Rules))
	}

	if err := NewDeleteRuleUseCase(repo).Execute(ctx, owner, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ = NewListRulesUseCase(repo).Execute(ctx, owner)
	if len(list.Rules) != 0 {
		t.Errorf("rules after delete = %d", len(list.Rules))
	}
}
