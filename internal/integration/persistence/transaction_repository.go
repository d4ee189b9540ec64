package persistence

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/domain/valueobject"
	"github.com/owninstead/backend/internal/integration/persistence/model"
)

const upsertBatchSize = 100

// transactionRepository implements the adapter.TransactionRepository interface.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance.
func NewTransactionRepository(db *gorm.DB) adapter.TransactionRepository {
	return &transactionRepository{
		db: db,
	}
}

// FindByID retrieves a transaction by its ID.
func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	var txModel model.TransactionModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&txModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrTransactionNotFound
		}
		return nil, result.Error
	}
	return txModel.ToEntity(), nil
}

// FindByDateRange retrieves a user's transactions dated within [start, end].
func (r *transactionRepository) FindByDateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*entity.Transaction, error) {
	var models []model.TransactionModel
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("date >= ? AND date <= ?", valueobject.StartOfDay(start), valueobject.StartOfDay(end)).
		Order("date ASC, created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toTransactionEntities(models), nil
}

// FindByFilter retrieves transactions based on filter criteria with pagination.
func (r *transactionRepository) FindByFilter(
	ctx context.Context,
	filter adapter.TransactionFilter,
	pagination adapter.TransactionPagination,
) (*adapter.TransactionListResult, error) {
	query := r.db.WithContext(ctx).Model(&model.TransactionModel{}).Where("user_id = ?", filter.UserID)
	if filter.StartDate != nil {
		query = query.Where("date >= ?", valueobject.StartOfDay(*filter.StartDate))
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", valueobject.StartOfDay(*filter.EndDate))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page := pagination.Page
	if page < 1 {
		page = 1
	}
	limit := pagination.Limit
	if limit < 1 {
		limit = 20
	}

	var models []model.TransactionModel
	result := query.
		Order("date DESC, created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	return &adapter.TransactionListResult{
		Transactions: toTransactionEntities(models),
		Total:        total,
		Page:         page,
		Limit:        limit,
		TotalPages:   int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// SetExcluded updates the excluded flag of a transaction owned by userID.
func (r *transactionRepository) SetExcluded(ctx context.Context, id, userID uuid.UUID, excluded bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.TransactionModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"excluded":   excluded,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrTransactionNotFound
	}
	return nil
}

// ExcludeMany marks the given transactions of userID as excluded.
func (r *transactionRepository) ExcludeMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.TransactionModel{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Updates(map[string]interface{}{
			"excluded":   true,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// Upsert inserts synced transactions or refreshes them by provider transaction ID.
func (r *transactionRepository) Upsert(ctx context.Context, transactions []*entity.Transaction) (int, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	models := make([]*model.TransactionModel, len(transactions))
	for i, t := range transactions {
		models[i] = model.TransactionModelFromEntity(t)
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "provider_transaction_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"amount", "merchant_name", "provider_category", "date", "updated_at",
			}),
		}).
		CreateInBatches(models, upsertBatchSize)
	if result.Error != nil {
		return 0, result.Error
	}
	return len(models), nil
}

func toTransactionEntities(models []model.TransactionModel) []*entity.Transaction {
	transactions := make([]*entity.Transaction, len(models))
	for i := range models {
		transactions[i] = models[i].ToEntity()
	}
	return transactions
}
