package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationStatus represents the status of a notification job in the queue.
type NotificationStatus string

const (
	NotificationStatusPending    NotificationStatus = "pending"
	NotificationStatusProcessing NotificationStatus = "processing"
	NotificationStatusSent       NotificationStatus = "sent"
	NotificationStatusFailed     NotificationStatus = "failed"
)

// NotificationKind identifies the message template.
type NotificationKind string

const (
	NotificationWeeklyReview   NotificationKind = "weekly_review"
	NotificationStreakBonus    NotificationKind = "streak_bonus"
	NotificationOrderSubmitted NotificationKind = "order_submitted"
	NotificationOrderFilled    NotificationKind = "order_filled"
	NotificationOrderFailed    NotificationKind = "order_failed"
)

// IsValid reports whether k is a known kind.
func (k NotificationKind) IsValid() bool {
	switch k {
	case NotificationWeeklyReview, NotificationStreakBonus, NotificationOrderSubmitted,
		NotificationOrderFilled, NotificationOrderFailed:
		return true
	}
	return false
}

// NotificationChannel is the delivery channel of a job.
type NotificationChannel string

const (
	ChannelPush  NotificationChannel = "push"
	ChannelEmail NotificationChannel = "email"
)

// NotificationJob is a message waiting in the delivery queue.
type NotificationJob struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Kind        NotificationKind
	Channel     NotificationChannel
	Params      map[string]interface{}
	Status      NotificationStatus
	Attempts    int
	MaxAttempts int
	LastError   string
	ProviderID  string
	CreatedAt   time.Time
	ScheduledAt time.Time
	ProcessedAt *time.Time
}

// NewNotificationJob creates a new NotificationJob with default values.
func NewNotificationJob(userID uuid.UUID, kind NotificationKind, channel NotificationChannel, params map[string]interface{}) *NotificationJob {
	now := time.Now().UTC()
	if params == nil {
		params = make(map[string]interface{})
	}
	return &NotificationJob{
		ID:          uuid.New(),
		UserID:      userID,
		Kind:        kind,
		Channel:     channel,
		Params:      params,
		Status:      NotificationStatusPending,
		Attempts:    0,
		MaxAttempts: 3,
		CreatedAt:   now,
		ScheduledAt: now,
	}
}

// MarkProcessing marks the job as currently being processed.
func (j *NotificationJob) MarkProcessing() {
	j.Status = NotificationStatusProcessing
}

// MarkSent marks the job as delivered.
func (j *NotificationJob) MarkSent(providerID string) {
	j.Status = NotificationStatusSent
	j.ProviderID = providerID
	now := time.Now().UTC()
	j.ProcessedAt = &now
}

// MarkFailed marks the job as failed and schedules a retry if attempts remain.
func (j *NotificationJob) MarkFailed(err error, permanent bool) {
	j.Attempts++
	j.LastError = err.Error()

	if permanent || j.Attempts >= j.MaxAttempts {
		j.Status = NotificationStatusFailed
		now := time.Now().UTC()
		j.ProcessedAt = &now
	} else {
		j.Status = NotificationStatusPending
		j.ScheduledAt = j.calculateNextRetry()
	}
}

// calculateNextRetry returns the next attempt time.
// Retry delays: 0s (immediate), 1min, 5min
func (j *NotificationJob) calculateNextRetry() time.Time {
	delays := []time.Duration{0, 1 * time.Minute, 5 * time.Minute}
	if j.Attempts < len(delays) {
		return time.Now().UTC().Add(delays[j.Attempts])
	}
	return time.Now().UTC().Add(5 * time.Minute)
}

// CanRetry returns true if the job can be retried.
func (j *NotificationJob) CanRetry() bool {
	return j.Attempts < j.MaxAttempts
}
