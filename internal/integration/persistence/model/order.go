package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/entity"
)

// OrderModel represents the orders table in the database. An evaluation has
// at most one order that is not failed.
type OrderModel struct {
	ID               uuid.UUID           `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID           `gorm:"type:uuid;not null;index"`
	EvaluationID     uuid.UUID           `gorm:"type:uuid;not null;index;uniqueIndex:idx_orders_active_evaluation,where:status <> 'failed'"`
	Symbol           string              `gorm:"type:varchar(10);not null"`
	AmountDollars    decimal.Decimal     `gorm:"type:decimal(15,2);not null"`
	Units            decimal.NullDecimal `gorm:"type:decimal(18,8)"`
	FilledPrice      decimal.NullDecimal `gorm:"type:decimal(15,4)"`
	OrderType        string              `gorm:"type:varchar(20);not null;default:'market'"`
	BrokerageOrderID *string             `gorm:"type:varchar(100);index"`
	Status           string              `gorm:"type:varchar(20);not null;index"`
	ErrorMessage     *string             `gorm:"type:text"`
	SubmittedAt      *time.Time          `gorm:"type:timestamp"`
	FilledAt         *time.Time          `gorm:"type:timestamp"`
	CreatedAt        time.Time           `gorm:"not null;index"`
	UpdatedAt        time.Time           `gorm:"not null"`
}

// TableName returns the table name for the OrderModel.
func (OrderModel) TableName() string {
	return "orders"
}

// ToEntity converts an OrderModel to a domain Order entity.
func (m *OrderModel) ToEntity() *entity.Order {
	return &entity.Order{
		ID:               m.ID,
		UserID:           m.UserID,
		EvaluationID:     m.EvaluationID,
		Symbol:           m.Symbol,
		AmountDollars:    m.AmountDollars,
		Units:            m.Units,
		FilledPrice:      m.FilledPrice,
		OrderType:        m.OrderType,
		BrokerageOrderID: derefString(m.BrokerageOrderID),
		Status:           entity.OrderStatus(m.Status),
		ErrorMessage:     derefString(m.ErrorMessage),
		SubmittedAt:      m.SubmittedAt,
		FilledAt:         m.FilledAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// OrderModelFromEntity creates an OrderModel from a domain Order entity.
func OrderModelFromEntity(o *entity.Order) *OrderModel {
	return &OrderModel{
		ID:               o.ID,
		UserID:           o.UserID,
		EvaluationID:     o.EvaluationID,
		Symbol:           o.Symbol,
		AmountDollars:    o.AmountDollars,
		Units:            o.Units,
		FilledPrice:      o.FilledPrice,
		OrderType:        o.OrderType,
		BrokerageOrderID: stringPtr(o.BrokerageOrderID),
		Status:           string(o.Status),
		ErrorMessage:     stringPtr(o.ErrorMessage),
		SubmittedAt:      o.SubmittedAt,
		FilledAt:         o.FilledAt,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
