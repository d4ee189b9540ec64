// Package notification queues user notifications and delivers them through
// push and email providers.
package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
)

// emailKinds are the notifications also delivered by email.
var emailKinds = map[entity.NotificationKind]bool{
	entity.NotificationWeeklyReview: true,
	entity.NotificationOrderFailed:  true,
}

// Service implements adapter.Notifier by writing jobs to the notification queue.
type Service struct {
	queue        adapter.NotificationQueueRepository
	emailEnabled bool
}

// NewService creates a new notification service. Email jobs are only queued
// when emailEnabled is set.
func NewService(queue adapter.NotificationQueueRepository, emailEnabled bool) *Service {
	return &Service{
		queue:        queue,
		emailEnabled: emailEnabled,
	}
}

// Notify queues a push job and, for email kinds, an email job. Failures are
// logged and dropped.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, kind entity.NotificationKind, params map[string]interface{}) {
	logger := slog.With("user_id", userID, "kind", kind)
	if !kind.IsValid() {
		logger.Error("Dropping notification with unknown kind")
		return
	}

	channels := []entity.NotificationChannel{entity.ChannelPush}
	if s.emailEnabled && emailKinds[kind] {
		channels = append(channels, entity.ChannelEmail)
	}

	for _, channel := range channels {
		job := entity.NewNotificationJob(userID, kind, channel, params)
		if err := s.queue.Create(ctx, job); err != nil {
			logger.Error("Failed to queue notification", "channel", channel, "error", err)
			continue
		}
		logger.Debug("Queued notification", "job_id", job.ID, "channel", channel)
	}
}

var _ adapter.Notifier = (*Service)(nil)
