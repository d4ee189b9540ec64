package entity

import (
	"time"

	"github.com/google/uuid"
)

// BankConnection links a user to a bank provider item.
type BankConnection struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	ItemID          string
	AccessToken     string
	InstitutionName string
	LastSyncedAt    *time.Time
	CreatedAt       time.Time
}

// NewBankConnection creates a never-synced BankConnection.
func NewBankConnection(userID uuid.UUID, itemID, accessToken, institutionName string) *BankConnection {
	return &BankConnection{
		ID:              uuid.New(),
		UserID:          userID,
		ItemID:          itemID,
		AccessToken:     accessToken,
		InstitutionName: institutionName,
		CreatedAt:       time.Now().UTC(),
	}
}

// BrokerageConnection links a user to a brokerage account.
type BrokerageConnection struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	BrokerageUserID     string
	BrokerageUserSecret string
	AccountID           string
	BrokerageName       string
	SupportsNotional    bool
	CreatedAt           time.Time
}

// IsTradable reports whether an account has been selected for trading.
func (c *BrokerageConnection) IsTradable() bool {
	return c != nil && c.AccountID != ""
}
