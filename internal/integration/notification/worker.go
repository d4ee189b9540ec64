package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/integration/notification/templates"
)

// Worker processes the notification queue and delivers messages.
type Worker struct {
	queue         adapter.NotificationQueueRepository
	push          adapter.PushSender
	email         adapter.EmailSender
	profiles      adapter.ProfileRepository
	users         adapter.UserRepository
	renderer      *templates.Renderer
	pollInterval  time.Duration
	batchSize     int
	retentionDays int
}

// WorkerConfig holds configuration for the notification worker.
type WorkerConfig struct {
	PollInterval  time.Duration
	BatchSize     int
	RetentionDays int
}

// DefaultWorkerConfig returns the default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:  5 * time.Second,
		BatchSize:     10,
		RetentionDays: 30,
	}
}

// NewWorker creates a new notification worker. email may be nil, in which case
// email jobs fail permanently.
func NewWorker(
	queue adapter.NotificationQueueRepository,
	push adapter.PushSender,
	email adapter.EmailSender,
	profiles adapter.ProfileRepository,
	users adapter.UserRepository,
	renderer *templates.Renderer,
	config WorkerConfig,
) *Worker {
	return &Worker{
		queue:         queue,
		push:          push,
		email:         email,
		profiles:      profiles,
		users:         users,
		renderer:      renderer,
		pollInterval:  config.PollInterval,
		batchSize:     config.BatchSize,
		retentionDays: config.RetentionDays,
	}
}

// Start begins the worker loop. It blocks until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("Notification worker started",
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	cleanup := time.NewTicker(24 * time.Hour)
	defer cleanup.Stop()

	w.processBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Notification worker shutting down")
			return
		case <-ticker.C:
			w.processBatch(ctx)
		case <-cleanup.C:
			w.purgeSent(ctx)
		}
	}
}

// ProcessNow processes one batch of due jobs immediately.
func (w *Worker) ProcessNow(ctx context.Context) {
	w.processBatch(ctx)
}

func (w *Worker) processBatch(ctx context.Context) {
	jobs, err := w.queue.GetPendingJobs(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending notification jobs", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	slog.Debug("Processing notification batch", "count", len(jobs))

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
			w.processJob(ctx, job)
		}
	}
}

func (w *Worker) processJob(ctx context.Context, job *entity.NotificationJob) {
	logger := slog.With(
		"job_id", job.ID,
		"user_id", job.UserID,
		"kind", job.Kind,
		"channel", job.Channel,
	)

	job.MarkProcessing()
	if err := w.queue.Update(ctx, job); err != nil {
		logger.Error("Failed to mark job as processing", "error", err)
		return
	}

	var (
		providerID string
		err        error
	)
	switch job.Channel {
	case entity.ChannelPush:
		providerID, err = w.deliverPush(ctx, job)
	case entity.ChannelEmail:
		providerID, err = w.deliverEmail(ctx, job)
	default:
		err = permanent("unknown channel", fmt.Errorf("channel %q", job.Channel))
	}

	if err != nil {
		logger.Warn("Failed to deliver notification", "error", err)
		w.handleFailure(ctx, job, err, domainerror.IsPermanent(err))
		return
	}

	job.MarkSent(providerID)
	if err := w.queue.Update(ctx, job); err != nil {
		logger.Error("Failed to mark job as sent", "error", err)
		return
	}
	logger.Info("Notification sent", "provider_id", providerID)
}

func (w *Worker) deliverPush(ctx context.Context, job *entity.NotificationJob) (string, error) {
	profile, err := w.profiles.FindByUserID(ctx, job.UserID)
	if err != nil {
		if errors.Is(err, domainerror.ErrProfileNotFound) {
			return "", permanent("profile not found", err)
		}
		return "", temporary("failed to load profile", err)
	}
	if profile.PushToken == "" {
		return "", permanent("user has no push token", domainerror.ErrNoRecipient)
	}

	title, body, err := w.renderer.RenderPush(string(job.Kind), job.Params)
	if err != nil {
		return "", permanent("failed to render push", err)
	}

	result, err := w.push.Send(ctx, adapter.PushMessage{
		To:    profile.PushToken,
		Title: title,
		Body:  body,
		Data:  map[string]string{"kind": string(job.Kind)},
	})
	if err != nil {
		if errors.Is(err, domainerror.ErrDeviceNotRegistered) {
			if clearErr := w.profiles.ClearPushToken(ctx, job.UserID, profile.PushToken); clearErr != nil {
				slog.Error("Failed to clear push token", "user_id", job.UserID, "error", clearErr)
			} else {
				slog.Info("Cleared unregistered push token", "user_id", job.UserID)
			}
		}
		return "", err
	}
	return result.TicketID, nil
}

func (w *Worker) deliverEmail(ctx context.Context, job *entity.NotificationJob) (string, error) {
	if w.email == nil {
		return "", permanent("email is not configured", domainerror.ErrNoRecipient)
	}

	user, err := w.users.FindByID(ctx, job.UserID)
	if err != nil {
		if errors.Is(err, domainerror.ErrUserNotFound) {
			return "", permanent("user not found", err)
		}
		return "", temporary("failed to load user", err)
	}
	if user.Email == "" {
		return "", permanent("user has no email", domainerror.ErrNoRecipient)
	}

	subject, html, text, err := w.renderer.RenderEmail(string(job.Kind), job.Params)
	if err != nil {
		return "", permanent("failed to render email", err)
	}

	result, err := w.email.Send(ctx, adapter.SendEmailInput{
		To:      user.Email,
		Name:    user.Name,
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		return "", err
	}
	return result.ResendID, nil
}

func (w *Worker) handleFailure(ctx context.Context, job *entity.NotificationJob, err error, permanent bool) {
	job.MarkFailed(err, permanent)

	if updateErr := w.queue.Update(ctx, job); updateErr != nil {
		slog.Error("Failed to update job after failure", "job_id", job.ID, "error", updateErr)
	}

	if job.Status == entity.NotificationStatusFailed {
		slog.Warn("Notification job permanently failed",
			"job_id", job.ID,
			"attempts", job.Attempts,
			"last_error", job.LastError,
		)
	} else {
		slog.Info("Notification job scheduled for retry",
			"job_id", job.ID,
			"attempts", job.Attempts,
			"scheduled_at", job.ScheduledAt,
		)
	}
}

func (w *Worker) purgeSent(ctx context.Context) {
	n, err := w.queue.DeleteOldSentJobs(ctx, w.retentionDays)
	if err != nil {
		slog.Error("Failed to purge sent notifications", "error", err)
		return
	}
	if n > 0 {
		slog.Info("Purged sent notifications", "count", n)
	}
}
