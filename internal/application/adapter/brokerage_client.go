package adapter

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/entity"
)

// Quote is the current price of a tradable symbol.
type Quote struct {
	Symbol            string
	UniversalSymbolID string
	Price             decimal.Decimal
}

// PlacedOrder is the brokerage's acknowledgement of a submitted order.
type PlacedOrder struct {
	BrokerageOrderID string
	Status           string
}

// BrokerageOrderStatus is the brokerage's view of a previously placed order.
type BrokerageOrderStatus struct {
	Found          bool
	Status         string
	ExecutionPrice decimal.NullDecimal
	FilledUnits    decimal.NullDecimal
}

// IsFilled reports whether the brokerage executed the order.
func (s *BrokerageOrderStatus) IsFilled() bool {
	return s != nil && s.Found && (s.Status == "EXECUTED" || s.Status == "FILLED")
}

// IsRejected reports whether the brokerage gave up on the order.
func (s *BrokerageOrderStatus) IsRejected() bool {
	if s == nil || !s.Found {
		return false
	}
	switch s.Status {
	case "REJECTED", "CANCELED", "CANCELLED", "FAILED", "EXPIRED":
		return true
	}
	return false
}

// BrokerageClient defines the interface to the brokerage aggregator.
type BrokerageClient interface {
	// GetQuote returns the current quote for symbol on the connection's account.
	GetQuote(ctx context.Context, connection *entity.BrokerageConnection, symbol string) (*Quote, error)

	// PlaceMarketBuy submits a day market buy for units of the quoted symbol.
	PlaceMarketBuy(ctx context.Context, connection *entity.BrokerageConnection, quote *Quote, units decimal.Decimal) (*PlacedOrder, error)

	// GetOrderStatus looks up an order by brokerage order ID.
	GetOrderStatus(ctx context.Context, connection *entity.BrokerageConnection, brokerageOrderID string) (*BrokerageOrderStatus, error)

	// SupportsNotional reports whether the account accepts fractional units.
	SupportsNotional(ctx context.Context, connection *entity.BrokerageConnection) (bool, error)
}
