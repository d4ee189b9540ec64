package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle of a brokerage order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusFailed    OrderStatus = "failed"
)

// IsValid reports whether s is a known status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusSubmitted, OrderStatusFilled, OrderStatusFailed:
		return true
	}
	return false
}

// OrderType is the brokerage order type. Only market buys are placed.
const OrderTypeMarket = "market"

// Order is one attempted brokerage purchase for an evaluation.
type Order struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	EvaluationID     uuid.UUID
	Symbol           string
	AmountDollars    decimal.Decimal
	Units            decimal.NullDecimal
	FilledPrice      decimal.NullDecimal
	OrderType        string
	BrokerageOrderID string
	Status           OrderStatus
	ErrorMessage     string
	SubmittedAt      *time.Time
	FilledAt         *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewOrder creates a pending market Order.
func NewOrder(userID, evaluationID uuid.UUID, symbol string, amount decimal.Decimal) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:            uuid.New(),
		UserID:        userID,
		EvaluationID:  evaluationID,
		Symbol:        symbol,
		AmountDollars: amount,
		OrderType:     OrderTypeMarket,
		Status:        OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// MarkSubmitted records a successful placement.
func (o *Order) MarkSubmitted(brokerageOrderID string, units decimal.Decimal) {
	now := time.Now().UTC()
	o.Status = OrderStatusSubmitted
	o.BrokerageOrderID = brokerageOrderID
	o.Units = decimal.NewNullDecimal(units)
	o.SubmittedAt = &now
	o.UpdatedAt = now
}

// MarkFailed records a failed attempt.
func (o *Order) MarkFailed(err error) {
	o.Status = OrderStatusFailed
	o.ErrorMessage = err.Error()
	o.UpdatedAt = time.Now().UTC()
}

// MarkFilled records a fill reported by the brokerage.
func (o *Order) MarkFilled(units, price decimal.NullDecimal) {
	now := time.Now().UTC()
	o.Status = OrderStatusFilled
	if units.Valid {
		o.Units = units
	}
	o.FilledPrice = price
	o.FilledAt = &now
	o.UpdatedAt = now
}

// Blocks reports whether the order prevents a new attempt for the same evaluation.
func (o *Order) Blocks() bool {
	return o.Status != OrderStatusFailed
}
