package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/integration/persistence/model"
)

type bankConnectionRepository struct {
	db *gorm.DB
}

// NewBankConnectionRepository creates a new bank connection repository instance.
func NewBankConnectionRepository(db *gorm.DB) adapter.BankConnectionRepository {
	return &bankConnectionRepository{
		db: db,
	}
}

func (r *bankConnectionRepository) Create(ctx context.Context, connection *entity.BankConnection) error {
	return r.db.WithContext(ctx).Create(model.BankConnectionModelFromEntity(connection)).Error
}

func (r *bankConnectionRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.BankConnection, error) {
	var models []model.BankConnectionModel
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toBankConnectionEntities(models), nil
}

// FindAllForSync orders never-synced connections first, then by oldest sync.
func (r *bankConnectionRepository) FindAllForSync(ctx context.Context) ([]*entity.BankConnection, error) {
	var models []model.BankConnectionModel
	result := r.db.WithContext(ctx).
		Order("last_synced_at IS NOT NULL, last_synced_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toBankConnectionEntities(models), nil
}

func (r *bankConnectionRepository) MarkSynced(ctx context.Context, id uuid.UUID, syncedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.BankConnectionModel{}).
		Where("id = ?", id).
		Update("last_synced_at", syncedAt.UTC()).Error
}

func toBankConnectionEntities(models []model.BankConnectionModel) []*entity.BankConnection {
	connections := make([]*entity.BankConnection, len(models))
	for i := range models {
		connections[i] = models[i].ToEntity()
	}
	return connections
}

type brokerageConnectionRepository struct {
	db *gorm.DB
}

// NewBrokerageConnectionRepository creates a new brokerage connection repository instance.
func NewBrokerageConnectionRepository(db *gorm.DB) adapter.BrokerageConnectionRepository {
	return &brokerageConnectionRepository{
		db: db,
	}
}

func (r *brokerageConnectionRepository) Create(ctx context.Context, connection *entity.BrokerageConnection) error {
	return r.db.WithContext(ctx).Create(model.BrokerageConnectionModelFromEntity(connection)).Error
}

// FindByUser returns ErrBrokerageNotConnected when the user never linked a brokerage.
func (r *brokerageConnectionRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*entity.BrokerageConnection, error) {
	var connModel model.BrokerageConnectionModel
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&connModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrBrokerageNotConnected
		}
		return nil, result.Error
	}
	return connModel.ToEntity(), nil
}
