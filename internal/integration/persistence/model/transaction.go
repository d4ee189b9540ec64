package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/entity"
)

// TransactionModel represents the transactions table in the database.
type TransactionModel struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID                uuid.UUID       `gorm:"type:uuid;not null;index:idx_transactions_user_date,priority:1"`
	BankConnectionID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProviderTransactionID string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Amount                decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	MerchantName          string          `gorm:"type:varchar(255)"`
	ProviderCategory      StringArray     `gorm:"not null"`
	Date                  time.Time       `gorm:"type:date;not null;index:idx_transactions_user_date,priority:2"`
	Excluded              bool            `gorm:"not null;default:false"`
	CreatedAt             time.Time       `gorm:"not null"`
	UpdatedAt             time.Time       `gorm:"not null"`
}

// TableName returns the table name for the TransactionModel.
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToEntity converts a TransactionModel to a domain Transaction entity.
func (m *TransactionModel) ToEntity() *entity.Transaction {
	return &entity.Transaction{
		ID:                    m.ID,
		UserID:                m.UserID,
		BankConnectionID:      m.BankConnectionID,
		ProviderTransactionID: m.ProviderTransactionID,
		Amount:                m.Amount,
		MerchantName:          m.MerchantName,
		ProviderCategory:      []string(m.ProviderCategory),
		Date:                  m.Date.UTC(),
		Excluded:              m.Excluded,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

// TransactionModelFromEntity creates a TransactionModel from a domain Transaction entity.
func TransactionModelFromEntity(t *entity.Transaction) *TransactionModel {
	return &TransactionModel{
		ID:                    t.ID,
		UserID:                t.UserID,
		BankConnectionID:      t.BankConnectionID,
		ProviderTransactionID: t.ProviderTransactionID,
		Amount:                t.Amount,
		MerchantName:          t.MerchantName,
		ProviderCategory:      StringArray(t.ProviderCategory),
		Date:                  t.Date,
		Excluded:              t.Excluded,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
	}
}
