// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents an account holder.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a new User.
func NewUser(email, name, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Profile holds a user's investing preferences and safety limits.
type Profile struct {
	UserID              uuid.UUID
	SelectedAsset       string
	MaxPerTrade         decimal.Decimal
	MaxPerMonth         decimal.Decimal
	InvestingPaused     bool
	OnboardingCompleted bool
	PushToken           string
	FirstTradeAt        *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewProfile creates a Profile with the given default limits.
func NewProfile(userID uuid.UUID, selectedAsset string, maxPerTrade, maxPerMonth decimal.Decimal) *Profile {
	now := time.Now().UTC()
	return &Profile{
		UserID:        userID,
		SelectedAsset: selectedAsset,
		MaxPerTrade:   maxPerTrade,
		MaxPerMonth:   maxPerMonth,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Symbol returns the selected asset, or fallback when none is set.
func (p *Profile) Symbol(fallback string) string {
	if p == nil || p.SelectedAsset == "" {
		return fallback
	}
	return p.SelectedAsset
}

// CanEvaluate reports whether the weekly batch should evaluate this user.
func (p *Profile) CanEvaluate() bool {
	return p.OnboardingCompleted && !p.InvestingPaused
}
