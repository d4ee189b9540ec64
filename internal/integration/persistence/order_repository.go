package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/integration/persistence/model"
)

// orderRepository implements the adapter.OrderRepository interface.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance.
func NewOrderRepository(db *gorm.DB) adapter.OrderRepository {
	return &orderRepository{
		db: db,
	}
}

// Create inserts the order unless its evaluation already holds a live one.
// The partial unique index on evaluation_id decides, so two processes racing
// on the same evaluation get exactly one row.
func (r *orderRepository) Create(ctx context.Context, order *entity.Order) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model.OrderModelFromEntity(order))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Update saves changes to an order.
func (r *orderRepository) Update(ctx context.Context, order *entity.Order) error {
	order.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(model.OrderModelFromEntity(order)).Error
}

// FindByID retrieves an order by its ID.
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var orderModel model.OrderModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&orderModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrOrderNotFound
		}
		return nil, result.Error
	}
	return orderModel.ToEntity(), nil
}

// FindByFilter retrieves orders based on filter criteria with pagination.
func (r *orderRepository) FindByFilter(
	ctx context.Context,
	filter adapter.OrderFilter,
	pagination adapter.Pagination,
) (*adapter.OrderListResult, error) {
	query := r.db.WithContext(ctx).Model(&model.OrderModel{}).Where("user_id = ?", filter.UserID)
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var models []model.OrderModel
	result := query.
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.PageSize).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	return &adapter.OrderListResult{
		Orders:   toOrderEntities(models),
		Total:    total,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}, nil
}

// FindByEvaluation retrieves every order attempt of an evaluation.
func (r *orderRepository) FindByEvaluation(ctx context.Context, evaluationID uuid.UUID) ([]*entity.Order, error) {
	var models []model.OrderModel
	result := r.db.WithContext(ctx).
		Where("evaluation_id = ?", evaluationID).
		Order("created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toOrderEntities(models), nil
}

// FindByStatus retrieves all orders with the given status.
func (r *orderRepository) FindByStatus(ctx context.Context, status entity.OrderStatus) ([]*entity.Order, error) {
	var models []model.OrderModel
	result := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toOrderEntities(models), nil
}

// SumCommittedSince sums the dollar amount of a user's non-failed orders created since the given time.
func (r *orderRepository) SumCommittedSince(ctx context.Context, userID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := r.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Select("SUM(amount_dollars)").
		Where("user_id = ? AND status <> ? AND created_at >= ?", userID, string(entity.OrderStatusFailed), since.UTC()).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal.Round(2), nil
}

func toOrderEntities(models []model.OrderModel) []*entity.Order {
	orders := make([]*entity.Order, len(models))
	for i := range models {
		orders[i] = models[i].ToEntity()
	}
	return orders
}
