package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/domain/entity"
)

// BankConnectionModel represents the bank_connections table in the database.
type BankConnectionModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	ItemID          string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	AccessToken     string     `gorm:"type:varchar(255);not null"`
	InstitutionName string     `gorm:"type:varchar(255)"`
	LastSyncedAt    *time.Time `gorm:"type:timestamp"`
	CreatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for the BankConnectionModel.
func (BankConnectionModel) TableName() string {
	return "bank_connections"
}

// ToEntity converts a BankConnectionModel to a domain BankConnection entity.
func (m *BankConnectionModel) ToEntity() *entity.BankConnection {
	return &entity.BankConnection{
		ID:              m.ID,
		UserID:          m.UserID,
		ItemID:          m.ItemID,
		AccessToken:     m.AccessToken,
		InstitutionName: m.InstitutionName,
		LastSyncedAt:    m.LastSyncedAt,
		CreatedAt:       m.CreatedAt,
	}
}

// BankConnectionModelFromEntity creates a BankConnectionModel from a domain BankConnection entity.
func BankConnectionModelFromEntity(c *entity.BankConnection) *BankConnectionModel {
	return &BankConnectionModel{
		ID:              c.ID,
		UserID:          c.UserID,
		ItemID:          c.ItemID,
		AccessToken:     c.AccessToken,
		InstitutionName: c.InstitutionName,
		LastSyncedAt:    c.LastSyncedAt,
		CreatedAt:       c.CreatedAt,
	}
}

// BrokerageConnectionModel represents the brokerage_connections table in the database.
type BrokerageConnectionModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	BrokerageUserID     string    `gorm:"type:varchar(100);not null"`
	BrokerageUserSecret string    `gorm:"type:varchar(255);not null"`
	AccountID           *string   `gorm:"type:varchar(100)"`
	BrokerageName       string    `gorm:"type:varchar(100)"`
	SupportsNotional    bool      `gorm:"not null;default:false"`
	CreatedAt           time.Time `gorm:"not null"`
}

// TableName returns the table name for the BrokerageConnectionModel.
func (BrokerageConnectionModel) TableName() string {
	return "brokerage_connections"
}

// ToEntity converts a BrokerageConnectionModel to a domain BrokerageConnection entity.
func (m *BrokerageConnectionModel) ToEntity() *entity.BrokerageConnection {
	return &entity.BrokerageConnection{
		ID:                  m.ID,
		UserID:              m.UserID,
		BrokerageUserID:     m.BrokerageUserID,
		BrokerageUserSecret: m.BrokerageUserSecret,
		AccountID:           derefString(m.AccountID),
		BrokerageName:       m.BrokerageName,
		SupportsNotional:    m.SupportsNotional,
		CreatedAt:           m.CreatedAt,
	}
}

// BrokerageConnectionModelFromEntity creates a BrokerageConnectionModel from a domain entity.
func BrokerageConnectionModelFromEntity(c *entity.BrokerageConnection) *BrokerageConnectionModel {
	return &BrokerageConnectionModel{
		ID:                  c.ID,
		UserID:              c.UserID,
		BrokerageUserID:     c.BrokerageUserID,
		BrokerageUserSecret: c.BrokerageUserSecret,
		AccountID:           stringPtr(c.AccountID),
		BrokerageName:       c.BrokerageName,
		SupportsNotional:    c.SupportsNotional,
		CreatedAt:           c.CreatedAt,
	}
}
