package adapter

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction is a posted transaction as reported by the bank provider.
type BankTransaction struct {
	ProviderTransactionID string
	Amount                decimal.Decimal
	MerchantName          string
	Categories            []string
	Date                  time.Time
	Pending               bool
}

// BankClient defines the interface to the bank aggregation provider.
type BankClient interface {
	// GetTransactions returns the transactions of an item dated within [start, end].
	GetTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]BankTransaction, error)
}
