package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/entity"
	"github.com/owninstead/backend/internal/domain/valueobject"
)

// RuleModel represents the rules table in the database.
type RuleModel struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID           `gorm:"type:uuid;not null;index"`
	Name            string              `gorm:"type:varchar(100);not null"`
	Category        string              `gorm:"type:varchar(30);not null"`
	MerchantPattern *string             `gorm:"type:varchar(100)"`
	Period          string              `gorm:"type:varchar(10);not null;default:'weekly'"`
	TargetSpend     decimal.Decimal     `gorm:"type:decimal(15,2);not null"`
	InvestType      string              `gorm:"type:varchar(20);not null"`
	InvestAmount    decimal.NullDecimal `gorm:"type:decimal(15,2)"`
	StreakEnabled   bool                `gorm:"not null;default:true"`
	IsActive        bool                `gorm:"not null;default:true;index"`
	CreatedAt       time.Time           `gorm:"not null"`
	UpdatedAt       time.Time           `gorm:"not null"`
}

// TableName returns the table name for the RuleModel.
func (RuleModel) TableName() string {
	return "rules"
}

// ToEntity converts a RuleModel to a domain Rule entity.
func (m *RuleModel) ToEntity() *entity.Rule {
	var pattern string
	if m.MerchantPattern != nil {
		pattern = *m.MerchantPattern
	}
	return &entity.Rule{
		ID:              m.ID,
		UserID:          m.UserID,
		Name:            m.Name,
		Category:        valueobject.Category(m.Category),
		MerchantPattern: pattern,
		Period:          entity.RulePeriod(m.Period),
		TargetSpend:     m.TargetSpend,
		InvestType:      entity.InvestType(m.InvestType),
		InvestAmount:    m.InvestAmount,
		StreakEnabled:   m.StreakEnabled,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// RuleModelFromEntity creates a RuleModel from a domain Rule entity.
func RuleModelFromEntity(r *entity.Rule) *RuleModel {
	var pattern *string
	if r.MerchantPattern != "" {
		p := r.MerchantPattern
		pattern = &p
	}
	return &RuleModel{
		ID:              r.ID,
		UserID:          r.UserID,
		Name:            r.Name,
		Category:        string(r.Category),
		MerchantPattern: pattern,
		Period:          string(r.Period),
		TargetSpend:     r.TargetSpend,
		InvestType:      string(r.InvestType),
		InvestAmount:    r.InvestAmount,
		StreakEnabled:   r.StreakEnabled,
		IsActive:        r.IsActive,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
