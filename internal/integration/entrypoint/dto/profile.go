package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/entity"
)

// UpdateProfileRequest represents the request body for PATCH /profile.
type UpdateProfileRequest struct {
	SelectedAsset   *string          `json:"selected_asset,omitempty"`
	MaxPerTrade     *decimal.Decimal `json:"max_per_trade,omitempty"`
	MaxPerMonth     *decimal.Decimal `json:"max_per_month,omitempty"`
	InvestingPaused *bool            `json:"investing_paused,omitempty"`
	PushToken       *string          `json:"push_token,omitempty"`
}

// ProfileResponse represents the investing profile in API responses.
type ProfileResponse struct {
	SelectedAsset       string     `json:"selected_asset"`
	MaxPerTrade         string     `json:"max_per_trade"`
	MaxPerMonth         string     `json:"max_per_month"`
	InvestingPaused     bool       `json:"investing_paused"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	HasPushToken        bool       `json:"has_push_token"`
	FirstTradeAt        *time.Time `json:"first_trade_at,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ToProfileResponse converts a domain Profile entity to a ProfileResponse DTO.
func ToProfileResponse(p *entity.Profile) ProfileResponse {
	return ProfileResponse{
		SelectedAsset:       p.SelectedAsset,
		MaxPerTrade:         p.MaxPerTrade.StringFixed(2),
		MaxPerMonth:         p.MaxPerMonth.StringFixed(2),
		InvestingPaused:     p.InvestingPaused,
		OnboardingCompleted: p.OnboardingCompleted,
		HasPushToken:        p.PushToken != "",
		FirstTradeAt:        p.FirstTradeAt,
		UpdatedAt:           p.UpdatedAt,
	}
}
