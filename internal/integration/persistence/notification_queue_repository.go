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

// notificationQueueRepository implements the adapter.NotificationQueueRepository interface.
type notificationQueueRepository struct {
	db *gorm.DB
}

// NewNotificationQueueRepository creates a new notification queue repository instance.
func NewNotificationQueueRepository(db *gorm.DB) adapter.NotificationQueueRepository {
	return &notificationQueueRepository{
		db: db,
	}
}

// Create adds a new notification job to the queue.
func (r *notificationQueueRepository) Create(ctx context.Context, job *entity.NotificationJob) error {
	return r.db.WithContext(ctx).Create(model.NotificationQueueModelFromEntity(job)).Error
}

// GetPendingJobs retrieves jobs ready to be processed.
func (r *notificationQueueRepository) GetPendingJobs(ctx context.Context, limit int) ([]*entity.NotificationJob, error) {
	var models []model.NotificationQueueModel

	result := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", string(entity.NotificationStatusPending), time.Now().UTC()).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	jobs := make([]*entity.NotificationJob, len(models))
	for i := range models {
		jobs[i] = models[i].ToEntity()
	}
	return jobs, nil
}

// Update saves changes to a notification job.
func (r *notificationQueueRepository) Update(ctx context.Context, job *entity.NotificationJob) error {
	return r.db.WithContext(ctx).Save(model.NotificationQueueModelFromEntity(job)).Error
}

// GetByID retrieves a specific job by its ID.
func (r *notificationQueueRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.NotificationJob, error) {
	var m model.NotificationQueueModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrNotificationJobNotFound
		}
		return nil, result.Error
	}
	return m.ToEntity(), nil
}

// GetByUser retrieves jobs for a user.
func (r *notificationQueueRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*entity.NotificationJob, error) {
	var models []model.NotificationQueueModel
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	jobs := make([]*entity.NotificationJob, len(models))
	for i := range models {
		jobs[i] = models[i].ToEntity()
	}
	return jobs, nil
}

// DeleteOldSentJobs removes sent jobs older than the specified number of days.
func (r *notificationQueueRepository) DeleteOldSentJobs(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	result := r.db.WithContext(ctx).
		Where("status = ? AND processed_at < ?", string(entity.NotificationStatusSent), cutoff).
		Delete(&model.NotificationQueueModel{})
	return result.RowsAffected, result.Error
}
