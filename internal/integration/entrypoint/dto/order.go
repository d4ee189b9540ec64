package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/entity"
)

// ListOrdersQuery represents the query string of GET /orders.
type ListOrdersQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending submitted filled failed"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// OrderResponse represents a single order in API responses.
type OrderResponse struct {
	ID               string     `json:"id"`
	EvaluationID     string     `json:"evaluation_id"`
	Symbol           string     `json:"symbol"`
	AmountDollars    string     `json:"amount_dollars"`
	Units            *string    `json:"units,omitempty"`
	FilledPrice      *string    `json:"filled_price,omitempty"`
	OrderType        string     `json:"order_type"`
	BrokerageOrderID string     `json:"brokerage_order_id,omitempty"`
	Status           string     `json:"status"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
	FilledAt         *time.Time `json:"filled_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// OrderListResponse represents the response for listing orders.
type OrderListResponse struct {
	Orders   []OrderResponse `json:"orders"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// ToOrderResponse converts a domain Order entity to an OrderResponse DTO.
func ToOrderResponse(o *entity.Order) OrderResponse {
	return OrderResponse{
		ID:               o.ID.String(),
		EvaluationID:     o.EvaluationID.String(),
		Symbol:           o.Symbol,
		AmountDollars:    o.AmountDollars.StringFixed(2),
		Units:            nullString(o.Units, 6),
		FilledPrice:      nullString(o.FilledPrice, 2),
		OrderType:        o.OrderType,
		BrokerageOrderID: o.BrokerageOrderID,
		Status:           string(o.Status),
		ErrorMessage:     o.ErrorMessage,
		SubmittedAt:      o.SubmittedAt,
		FilledAt:         o.FilledAt,
		CreatedAt:        o.CreatedAt,
	}
}

// ToOrderResponses converts a slice of orders.
func ToOrderResponses(orders []*entity.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i, o := range orders {
		responses[i] = ToOrderResponse(o)
	}
	return responses
}

func nullString(d decimal.NullDecimal, places int32) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(places)
	return &s
}
