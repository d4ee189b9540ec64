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

// evaluationRepository implements the adapter.EvaluationRepository interface.
type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository creates a new evaluation repository instance.
func NewEvaluationRepository(db *gorm.DB) adapter.EvaluationRepository {
	return &evaluationRepository{
		db: db,
	}
}

// CreateIfAbsent inserts the evaluation unless (rule_id, period_start) is taken.
func (r *evaluationRepository) CreateIfAbsent(ctx context.Context, evaluation *entity.Evaluation) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "rule_id"}, {Name: "period_start"}},
			DoNothing: true,
		}).
		Create(model.EvaluationModelFromEntity(evaluation))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindByID retrieves an evaluation by its ID.
func (r *evaluationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Evaluation, error) {
	var evalModel model.EvaluationModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&evalModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrEvaluationNotFound
		}
		return nil, result.Error
	}
	return evalModel.ToEntity(), nil
}

// FindByFilter retrieves evaluations based on filter criteria with pagination.
func (r *evaluationRepository) FindByFilter(
	ctx context.Context,
	filter adapter.EvaluationFilter,
	pagination adapter.Pagination,
) (*adapter.EvaluationListResult, error) {
	query := r.db.WithContext(ctx).Model(&model.EvaluationModel{}).Where("user_id = ?", filter.UserID)
	if filter.RuleID != nil {
		query = query.Where("rule_id = ?", *filter.RuleID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var models []model.EvaluationModel
	result := query.
		Order("period_start DESC, created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.PageSize).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	return &adapter.EvaluationListResult{
		Evaluations: toEvaluationEntities(models),
		Total:       total,
		Page:        pagination.Page,
		PageSize:    pagination.PageSize,
	}, nil
}

// FindLatestByRule retrieves the most recent evaluation of a rule.
func (r *evaluationRepository) FindLatestByRule(ctx context.Context, ruleID uuid.UUID) (*entity.Evaluation, error) {
	var evalModel model.EvaluationModel
	result := r.db.WithContext(ctx).
		Where("rule_id = ?", ruleID).
		Order("period_start DESC").
		First(&evalModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrEvaluationNotFound
		}
		return nil, result.Error
	}
	return evalModel.ToEntity(), nil
}

// FindPendingByUser retrieves a user's pending evaluations.
func (r *evaluationRepository) FindPendingByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Evaluation, error) {
	var models []model.EvaluationModel
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(entity.EvaluationStatusPending)).
		Order("period_start DESC, created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEvaluationEntities(models), nil
}

// FindConfirmedWithInvest retrieves confirmed evaluations that still have money to invest.
func (r *evaluationRepository) FindConfirmedWithInvest(ctx context.Context) ([]*entity.Evaluation, error) {
	var models []model.EvaluationModel
	result := r.db.WithContext(ctx).
		Where("status = ? AND final_invest > 0", string(entity.EvaluationStatusConfirmed)).
		Order("confirmed_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEvaluationEntities(models), nil
}

// SumOpenSince sums the invest still waiting on review or execution.
func (r *evaluationRepository) SumOpenSince(ctx context.Context, userID uuid.UUID, since time.Time, except uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := r.db.WithContext(ctx).
		Model(&model.EvaluationModel{}).
		Select("SUM(final_invest)").
		Where("user_id = ? AND id <> ? AND created_at >= ?", userID, except, since.UTC()).
		Where("status IN ?", []string{string(entity.EvaluationStatusPending), string(entity.EvaluationStatusConfirmed)}).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal.Round(2), nil
}

// Transition writes the evaluation's mutable columns when its stored status is still from.
func (r *evaluationRepository) Transition(ctx context.Context, evaluation *entity.Evaluation, from entity.EvaluationStatus) (bool, error) {
	evaluation.UpdatedAt = time.Now().UTC()
	m := model.EvaluationModelFromEntity(evaluation)

	result := r.db.WithContext(ctx).
		Model(&model.EvaluationModel{}).
		Where("id = ? AND status = ?", evaluation.ID, string(from)).
		Updates(map[string]interface{}{
			"status":                  m.Status,
			"actual_spend":            m.ActualSpend,
			"calculated_invest":       m.CalculatedInvest,
			"final_invest":            m.FinalInvest,
			"streak_count":            m.StreakCount,
			"matched_transaction_ids": m.MatchedTransactionIDs,
			"confirmed_at":            m.ConfirmedAt,
			"skipped_at":              m.SkippedAt,
			"executed_at":             m.ExecutedAt,
			"updated_at":              m.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func toEvaluationEntities(models []model.EvaluationModel) []*entity.Evaluation {
	evaluations := make([]*entity.Evaluation, len(models))
	for i := range models {
		evaluations[i] = models[i].ToEntity()
	}
	return evaluations
}
