package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/domain/entity"
)

// TransactionFilter defines filter options for listing transactions.
type TransactionFilter struct {
	UserID    uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// TransactionPagination defines pagination options.
type TransactionPagination struct {
	Page  int
	Limit int
}

// TransactionListResult represents the result of listing transactions.
type TransactionListResult struct {
	Transactions []*entity.Transaction
	Total        int64
	Page         int
	Limit        int
	TotalPages   int
}

// TransactionRepository defines the interface for transaction persistence operations.
type TransactionRepository interface {
	// FindByID retrieves a transaction by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)

	// FindByDateRange retrieves a user's transactions dated within [start, end], both inclusive days.
	FindByDateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*entity.Transaction, error)

	// FindByFilter retrieves transactions based on filter criteria with pagination, newest first.
	FindByFilter(ctx context.Context, filter TransactionFilter, pagination TransactionPagination) (*TransactionListResult, error)

	// SetExcluded updates the excluded flag of a transaction owned by userID.
	SetExcluded(ctx context.Context, id, userID uuid.UUID, excluded bool) error

	// ExcludeMany marks the given transactions of userID as excluded.
	// IDs belonging to other users are ignored. Returns the count of updated rows.
	ExcludeMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)

	// Upsert inserts synced transactions or refreshes them by provider transaction ID.
	// The excluded flag of existing rows is preserved.
	Upsert(ctx context.Context, transactions []*entity.Transaction) (int, error)
}
