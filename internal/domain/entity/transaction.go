package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/valueobject"
)

// Transaction is a bank transaction synced from the bank provider.
// Amount is always a positive magnitude. Only Excluded is user-editable.
type Transaction struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	BankConnectionID      uuid.UUID
	ProviderTransactionID string
	Amount                decimal.Decimal
	MerchantName          string
	ProviderCategory      []string
	Date                  time.Time
	Excluded              bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewSyncedTransaction creates a Transaction from a provider record.
func NewSyncedTransaction(
	userID, connectionID uuid.UUID,
	providerID string,
	amount decimal.Decimal,
	merchantName string,
	providerCategory []string,
	date time.Time,
) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		ID:                    uuid.New(),
		UserID:                userID,
		BankConnectionID:      connectionID,
		ProviderTransactionID: providerID,
		Amount:                amount.Abs(),
		MerchantName:          merchantName,
		ProviderCategory:      providerCategory,
		Date:                  valueobject.StartOfDay(date),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// CategoryPath returns the provider labels joined with " > ".
func (t *Transaction) CategoryPath() string {
	return valueobject.JoinCategoryPath(t.ProviderCategory)
}
