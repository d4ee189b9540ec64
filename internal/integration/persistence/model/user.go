// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/entity"
)

// UserModel represents the user table in the database.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string    `gorm:"type:varchar(100);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts a UserModel to a domain User entity.
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromEntity creates a UserModel from a domain User entity.
func FromEntity(user *entity.User) *UserModel {
	return &UserModel{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

// RefreshTokenModel represents the refresh_tokens table for token invalidation tracking.
type RefreshTokenModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Token       string    `gorm:"type:varchar(500);uniqueIndex;not null"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null"`
	Invalidated bool      `gorm:"default:false"`
	ExpiresAt   time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the RefreshTokenModel.
func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}

// ProfileModel represents the profiles table. One row per user.
type ProfileModel struct {
	UserID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SelectedAsset       string          `gorm:"type:varchar(10);not null;default:'VTI'"`
	MaxPerTrade         decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	MaxPerMonth         decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	InvestingPaused     bool            `gorm:"not null;default:false"`
	OnboardingCompleted bool            `gorm:"not null;default:false;index"`
	PushToken           *string         `gorm:"type:varchar(255)"`
	FirstTradeAt        *time.Time      `gorm:"type:timestamp"`
	CreatedAt           time.Time       `gorm:"not null"`
	UpdatedAt           time.Time       `gorm:"not null"`
}

// TableName returns the table name for the ProfileModel.
func (ProfileModel) TableName() string {
	return "profiles"
}

// ToEntity converts a ProfileModel to a domain Profile entity.
func (m *ProfileModel) ToEntity() *entity.Profile {
	var pushToken string
	if m.PushToken != nil {
		pushToken = *m.PushToken
	}
	return &entity.Profile{
		UserID:              m.UserID,
		SelectedAsset:       m.SelectedAsset,
		MaxPerTrade:         m.MaxPerTrade,
		MaxPerMonth:         m.MaxPerMonth,
		InvestingPaused:     m.InvestingPaused,
		OnboardingCompleted: m.OnboardingCompleted,
		PushToken:           pushToken,
		FirstTradeAt:        m.FirstTradeAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// ProfileModelFromEntity creates a ProfileModel from a domain Profile entity.
func ProfileModelFromEntity(p *entity.Profile) *ProfileModel {
	var pushToken *string
	if p.PushToken != "" {
		token := p.PushToken
		pushToken = &token
	}
	return &ProfileModel{
		UserID:              p.UserID,
		SelectedAsset:       p.SelectedAsset,
		MaxPerTrade:         p.MaxPerTrade,
		MaxPerMonth:         p.MaxPerMonth,
		InvestingPaused:     p.InvestingPaused,
		OnboardingCompleted: p.OnboardingCompleted,
		PushToken:           pushToken,
		FirstTradeAt:        p.FirstTradeAt,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}
