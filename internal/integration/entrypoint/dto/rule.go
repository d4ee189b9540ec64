package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/entity"
)

// CreateRuleRequest represents the request body for rule creation.
type CreateRuleRequest struct {
	Name            string           `json:"name" binding:"omitempty,max=100"`
	Category        string           `json:"category" binding:"required"`
	MerchantPattern string           `json:"merchant_pattern"`
	Period          string           `json:"period" binding:"omitempty,oneof=weekly"`
	TargetSpend     *decimal.Decimal `json:"target_spend" binding:"required"`
	InvestType      string           `json:"invest_type" binding:"required,oneof=fixed difference"`
	InvestAmount    *decimal.Decimal `json:"invest_amount,omitempty"`
	StreakEnabled   *bool            `json:"streak_enabled,omitempty"`
}

// UpdateRuleRequest represents the request body for rule update. Absent fields
// are left unchanged.
type UpdateRuleRequest struct {
	Name              *string          `json:"name,omitempty" binding:"omitempty,max=100"`
	Category          *string          `json:"category,omitempty"`
	MerchantPattern   *string          `json:"merchant_pattern,omitempty"`
	TargetSpend       *decimal.Decimal `json:"target_spend,omitempty"`
	InvestType        *string          `json:"invest_type,omitempty" binding:"omitempty,oneof=fixed difference"`
	InvestAmount      *decimal.Decimal `json:"invest_amount,omitempty"`
	ClearInvestAmount bool             `json:"clear_invest_amount,omitempty"`
	StreakEnabled     *bool            `json:"streak_enabled,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
}

// RuleResponse represents a single rule in API responses.
type RuleResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	MerchantPattern string    `json:"merchant_pattern,omitempty"`
	Period          string    `json:"period"`
	TargetSpend     string    `json:"target_spend"`
	InvestType      string    `json:"invest_type"`
	InvestAmount    *string   `json:"invest_amount,omitempty"`
	StreakEnabled   bool      `json:"streak_enabled"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RuleListResponse represents the response for listing rules.
type RuleListResponse struct {
	Rules []RuleResponse `json:"rules"`
}

// ToRuleResponse converts a domain Rule entity to a RuleResponse DTO.
func ToRuleResponse(r *entity.Rule) RuleResponse {
	response := RuleResponse{
		ID:              r.ID.String(),
		Name:            r.Name,
		Category:        r.Category.String(),
		MerchantPattern: r.MerchantPattern,
		Period:          string(r.Period),
		TargetSpend:     r.TargetSpend.StringFixed(2),
		InvestType:      string(r.InvestType),
		StreakEnabled:   r.StreakEnabled,
		IsActive:        r.IsActive,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.InvestAmount.Valid {
		amount := r.InvestAmount.Decimal.StringFixed(2)
		response.InvestAmount = &amount
	}
	return response
}

// ToRuleListResponse converts a slice of rules to a RuleListResponse DTO.
func ToRuleListResponse(rules []*entity.Rule) RuleListResponse {
	responses := make([]RuleResponse, len(rules))
	for i, r := range rules {
		responses[i] = ToRuleResponse(r)
	}
	return RuleListResponse{Rules: responses}
}
