package trade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/application/job"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

// RefreshOrdersUseCase polls the brokerage for submitted orders.
type RefreshOrdersUseCase struct {
	orderRepo      adapter.OrderRepository
	connectionRepo adapter.BrokerageConnectionRepository
	brokerage      adapter.BrokerageClient
	notifier       adapter.Notifier
}

// NewRefreshOrdersUseCase creates a new RefreshOrdersUseCase instance.
func NewRefreshOrdersUseCase(
	orderRepo adapter.OrderRepository,
	connectionRepo adapter.BrokerageConnectionRepository,
	brokerage adapter.BrokerageClient,
	notifier adapter.Notifier,
) *RefreshOrdersUseCase {
	return &RefreshOrdersUseCase{
		orderRepo:      orderRepo,
		connectionRepo: connectionRepo,
		brokerage:      brokerage,
		notifier:       notifier,
	}
}

// Execute records fills and rejections. Orders the brokerage still reports as
// open are counted as skipped. A rejected order never moves its evaluation
// back out of executed.
func (uc *RefreshOrdersUseCase) Execute(ctx context.Context) (job.Result, error) {
	var total job.Result

	orders, err := uc.orderRepo.FindByStatus(ctx, entity.OrderStatusSubmitted)
	if err != nil {
		return total, fmt.Errorf("failed to load submitted orders: %w", err)
	}

	connections := make(map[uuid.UUID]*entity.BrokerageConnection)
	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		logger := slog.With("order_id", order.ID, "user_id", order.UserID)

		conn, ok := connections[order.UserID]
		if !ok {
			conn, err = uc.connectionRepo.FindByUser(ctx, order.UserID)
			if err != nil && !errors.Is(err, domainerror.ErrBrokerageNotConnected) {
				total.Failed++
				logger.Error("Failed to load brokerage connection", "error", err)
				continue
			}
			connections[order.UserID] = conn
		}
		if conn == nil {
			total.Skipped++
			logger.Warn("Submitted order without a brokerage connection")
			continue
		}

		changed, err := uc.refresh(ctx, conn, order)
		if err != nil {
			total.Failed++
			logger.Error("Failed to refresh order", "error", err)
			continue
		}
		if changed {
			total.Succeeded++
		} else {
			total.Skipped++
		}
	}

	slog.Info("Order refresh finished", total.LogAttrs()...)
	return total, nil
}

func (uc *RefreshOrdersUseCase) refresh(ctx context.Context, conn *entity.BrokerageConnection, order *entity.Order) (bool, error) {
	status, err := uc.brokerage.GetOrderStatus(ctx, conn, order.BrokerageOrderID)
	if err != nil {
		return false, err
	}

	switch {
	case status.IsFilled():
		order.MarkFilled(status.FilledUnits, status.ExecutionPrice)
		if err := uc.orderRepo.Update(ctx, order); err != nil {
			return false, fmt.Errorf("failed to record fill: %w", err)
		}
		params := map[string]interface{}{
			"symbol": order.Symbol,
			"amount": order.AmountDollars.StringFixed(2),
		}
		if order.Units.Valid {
			params["units"] = order.Units.Decimal.String()
		}
		if order.FilledPrice.Valid {
			params["price"] = order.FilledPrice.Decimal.StringFixed(2)
		}
		uc.notifier.Notify(ctx, order.UserID, entity.NotificationOrderFilled, params)
		return true, nil

	case status.IsRejected():
		order.MarkFailed(fmt.Errorf("brokerage reported %s", status.Status))
		if err := uc.orderRepo.Update(ctx, order); err != nil {
			return false, fmt.Errorf("failed to record rejection: %w", err)
		}
		uc.notifier.Notify(ctx, order.UserID, entity.NotificationOrderFailed, map[string]interface{}{
			"symbol": order.Symbol,
			"amount": order.AmountDollars.StringFixed(2),
			"reason": order.ErrorMessage,
		})
		return true, nil
	}

	return false, nil
}
