package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/domain/entity"
)

// BankConnectionRepository defines the interface for bank connection persistence operations.
type BankConnectionRepository interface {
	// Create stores a new bank connection.
	Create(ctx context.Context, connection *entity.BankConnection) error

	// FindByUser retrieves all bank connections of a user.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.BankConnection, error)

	// FindAllForSync retrieves every connection, never-synced first, then oldest sync first.
	FindAllForSync(ctx context.Context) ([]*entity.BankConnection, error)

	// MarkSynced sets last_synced_at of a connection.
	MarkSynced(ctx context.Context, id uuid.UUID, syncedAt time.Time) error
}

// BrokerageConnectionRepository defines the interface for brokerage connection persistence operations.
type BrokerageConnectionRepository interface {
	// Create stores a new brokerage connection.
	Create(ctx context.Context, connection *entity.BrokerageConnection) error

	// FindByUser retrieves the brokerage connection of a user.
	FindByUser(ctx context.Context, userID uuid.UUID) (*entity.BrokerageConnection, error)
}
