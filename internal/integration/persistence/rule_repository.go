package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/integration/persistence/model"
)

// ruleRepository implements the adapter.RuleRepository interface.
type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new rule repository instance.
func NewRuleRepository(db *gorm.DB) adapter.RuleRepository {
	return &ruleRepository{
		db: db,
	}
}

// Create creates a new rule.
func (r *ruleRepository) Create(ctx context.Context, rule *entity.Rule) error {
	return r.db.WithContext(ctx).Create(model.RuleModelFromEntity(rule)).Error
}

// FindByID retrieves a rule by its ID.
func (r *ruleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Rule, error) {
	var ruleModel model.RuleModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&ruleModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrRuleNotFound
		}
		return nil, result.Error
	}
	return ruleModel.ToEntity(), nil
}

// FindByUser retrieves all rules of a user, newest first.
func (r *ruleRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Rule, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID))
}

// FindActiveByUser retrieves the active rules of a user.
func (r *ruleRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Rule, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("user_id = ? AND is_active = ?", userID, true))
}

func (r *ruleRepository) find(_ context.Context, query *gorm.DB) ([]*entity.Rule, error) {
	var models []model.RuleModel
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	rules := make([]*entity.Rule, len(models))
	for i := range models {
		rules[i] = models[i].ToEntity()
	}
	return rules, nil
}

// Update saves changes to a rule.
func (r *ruleRepository) Update(ctx context.Context, rule *entity.Rule) error {
	return r.db.WithContext(ctx).Save(model.RuleModelFromEntity(rule)).Error
}

// Delete removes a rule.
func (r *ruleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.RuleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrRuleNotFound
	}
	return nil
}
