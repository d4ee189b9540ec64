package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/entity"
)

// OrderFilter defines filter options for listing orders.
type OrderFilter struct {
	UserID uuid.UUID
	Status *entity.OrderStatus
}

// OrderListResult represents the result of listing orders.
type OrderListResult struct {
	Orders   []*entity.Order
	Total    int64
	Page     int
	PageSize int
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts the order unless the same evaluation already has an order
	// that is not failed. Returns false when that order exists.
	Create(ctx context.Context, order *entity.Order) (bool, error)

	// Update saves changes to an order.
	Update(ctx context.Context, order *entity.Order) error

	// FindByID retrieves an order by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)

	// FindByFilter retrieves orders based on filter criteria with pagination, newest first.
	FindByFilter(ctx context.Context, filter OrderFilter, pagination Pagination) (*OrderListResult, error)

	// FindByEvaluation retrieves every attempt for an evaluation, oldest first.
	FindByEvaluation(ctx context.Context, evaluationID uuid.UUID) ([]*entity.Order, error)

	// FindByStatus retrieves all orders with the given status.
	FindByStatus(ctx context.Context, status entity.OrderStatus) ([]*entity.Order, error)

	// SumCommittedSince sums amount_dollars of a user's non-failed orders created at or after since.
	SumCommittedSince(ctx context.Context, userID uuid.UUID, since time.Time) (decimal.Decimal, error)
}
