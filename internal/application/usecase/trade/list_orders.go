package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

// ListOrdersInput represents the input for listing orders.
type ListOrdersInput struct {
	UserID   uuid.UUID
	Status   string
	Page     int
	PageSize int
}

// ListOrdersOutput represents the output of listing orders.
type ListOrdersOutput struct {
	Orders   []*entity.Order
	Total    int64
	Page     int
	PageSize int
}

// ListOrdersUseCase lists a user's orders, newest first.
type ListOrdersUseCase struct {
	orderRepo adapter.OrderRepository
}

// NewListOrdersUseCase creates a new ListOrdersUseCase instance.
func NewListOrdersUseCase(orderRepo adapter.OrderRepository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

// Execute performs the listing.
func (uc *ListOrdersUseCase) Execute(ctx context.Context, input ListOrdersInput) (*ListOrdersOutput, error) {
	filter := adapter.OrderFilter{UserID: input.UserID}
	if input.Status != "" {
		status := entity.OrderStatus(input.Status)
		if !status.IsValid() {
			return nil, domainerror.NewOrderError(
				domainerror.ErrCodeInvalidOrderStatus,
				fmt.Sprintf("unknown status %q", input.Status),
				domainerror.ErrInvalidOrderStatus,
			)
		}
		filter.Status = &status
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	result, err := uc.orderRepo.FindByFilter(ctx, filter, adapter.Pagination{Page: page, PageSize: pageSize})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := result.Orders
	if orders == nil {
		orders = []*entity.Order{}
	}
	return &ListOrdersOutput{
		Orders:   orders,
		Total:    result.Total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetOrderUseCase fetches one of the user's orders.
type GetOrderUseCase struct {
	orderRepo adapter.OrderRepository
}

// NewGetOrderUseCase creates a new GetOrderUseCase instance.
func NewGetOrderUseCase(orderRepo adapter.OrderRepository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

// Execute returns the order, hiding other users' orders.
func (uc *GetOrderUseCase) Execute(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error) {
	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil && !errors.Is(err, domainerror.ErrOrderNotFound) {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, domainerror.NewOrderError(domainerror.ErrCodeOrderNotFound, "order not found", domainerror.ErrOrderNotFound)
	}
	return order, nil
}
