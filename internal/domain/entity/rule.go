package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/valueobject"
)

// RulePeriod is the evaluation cadence of a rule. Only weekly exists today.
type RulePeriod string

const (
	RulePeriodWeekly RulePeriod = "weekly"
)

// InvestType controls how the investable amount is derived once a target is beaten.
type InvestType string

const (
	// InvestTypeFixed invests the rule's fixed InvestAmount.
	InvestTypeFixed InvestType = "fixed"
	// InvestTypeDifference invests target minus actual spend.
	InvestTypeDifference InvestType = "difference"
)

// IsValid reports whether the invest type is known.
func (t InvestType) IsValid() bool {
	return t == InvestTypeFixed || t == InvestTypeDifference
}

// Rule is a user's standing spending-target instruction.
type Rule struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Name            string
	Category        valueobject.Category
	MerchantPattern string
	Period          RulePeriod
	TargetSpend     decimal.Decimal
	InvestType      InvestType
	InvestAmount    decimal.NullDecimal
	StreakEnabled   bool
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewRule creates a new active weekly Rule.
func NewRule(
	userID uuid.UUID,
	name string,
	category valueobject.Category,
	merchantPattern string,
	targetSpend decimal.Decimal,
	investType InvestType,
	investAmount decimal.NullDecimal,
	streakEnabled bool,
) *Rule {
	now := time.Now().UTC()
	return &Rule{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            name,
		Category:        category,
		MerchantPattern: merchantPattern,
		Period:          RulePeriodWeekly,
		TargetSpend:     targetSpend,
		InvestType:      investType,
		InvestAmount:    investAmount,
		StreakEnabled:   streakEnabled,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// HasMerchantPattern reports whether the rule matches by merchant pattern
// instead of by category.
func (r *Rule) HasMerchantPattern() bool {
	return r.MerchantPattern != ""
}

// FixedAmount returns the fixed invest amount, or zero when unset.
func (r *Rule) FixedAmount() decimal.Decimal {
	if r.InvestAmount.Valid {
		return r.InvestAmount.Decimal
	}
	return decimal.Zero
}
