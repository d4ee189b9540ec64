package model

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/domain/entity"
)

// NotificationQueueModel represents the notification_queue table in the database.
type NotificationQueueModel struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID    `gorm:"type:uuid;not null;index"`
	Kind        string       `gorm:"type:varchar(50);not null"`
	Channel     string       `gorm:"type:varchar(10);not null"`
	Params      string       `gorm:"type:jsonb;not null;default:'{}'"`
	Status      string       `gorm:"type:varchar(20);not null;default:'pending';index:idx_notification_queue_due,priority:1"`
	Attempts    int          `gorm:"not null;default:0"`
	MaxAttempts int          `gorm:"not null;default:3"`
	LastError   string       `gorm:"type:text"`
	ProviderID  string       `gorm:"type:varchar(100)"`
	CreatedAt   time.Time    `gorm:"not null"`
	ScheduledAt time.Time    `gorm:"not null;index:idx_notification_queue_due,priority:2"`
	ProcessedAt sql.NullTime `gorm:"type:timestamp"`
}

// TableName returns the table name for the NotificationQueueModel.
func (NotificationQueueModel) TableName() string {
	return "notification_queue"
}

// ToEntity converts a NotificationQueueModel to a domain NotificationJob entity.
func (m *NotificationQueueModel) ToEntity() *entity.NotificationJob {
	var params map[string]interface{}
	if m.Params != "" {
		if err := json.Unmarshal([]byte(m.Params), &params); err != nil {
			slog.Warn("Failed to unmarshal notification params", "error", err, "id", m.ID)
		}
	}
	if params == nil {
		params = make(map[string]interface{})
	}

	var processedAt *time.Time
	if m.ProcessedAt.Valid {
		processedAt = &m.ProcessedAt.Time
	}

	return &entity.NotificationJob{
		ID:          m.ID,
		UserID:      m.UserID,
		Kind:        entity.NotificationKind(m.Kind),
		Channel:     entity.NotificationChannel(m.Channel),
		Params:      params,
		Status:      entity.NotificationStatus(m.Status),
		Attempts:    m.Attempts,
		MaxAttempts: m.MaxAttempts,
		LastError:   m.LastError,
		ProviderID:  m.ProviderID,
		CreatedAt:   m.CreatedAt,
		ScheduledAt: m.ScheduledAt,
		ProcessedAt: processedAt,
	}
}

// NotificationQueueModelFromEntity creates a NotificationQueueModel from a domain NotificationJob entity.
func NotificationQueueModelFromEntity(job *entity.NotificationJob) *NotificationQueueModel {
	paramsJSON, err := json.Marshal(job.Params)
	if err != nil {
		slog.Error("Failed to marshal notification params", "error", err, "job_id", job.ID)
		paramsJSON = []byte("{}")
	}

	var processedAt sql.NullTime
	if job.ProcessedAt != nil {
		processedAt = sql.NullTime{Time: *job.ProcessedAt, Valid: true}
	}

	return &NotificationQueueModel{
		ID:          job.ID,
		UserID:      job.UserID,
		Kind:        string(job.Kind),
		Channel:     string(job.Channel),
		Params:      string(paramsJSON),
		Status:      string(job.Status),
		Attempts:    job.Attempts,
		MaxAttempts: job.MaxAttempts,
		LastError:   job.LastError,
		ProviderID:  job.ProviderID,
		CreatedAt:   job.CreatedAt,
		ScheduledAt: job.ScheduledAt,
		ProcessedAt: processedAt,
	}
}
