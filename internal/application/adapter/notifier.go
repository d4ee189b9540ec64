package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/domain/entity"
)

// Notifier queues user notifications. Delivery failures never reach the caller.
type Notifier interface {
	// Notify queues a notification of kind for userID.
	Notify(ctx context.Context, userID uuid.UUID, kind entity.NotificationKind, params map[string]interface{})
}

// PushMessage is a rendered push notification.
type PushMessage struct {
	To    string
	Title string
	Body  string
	Data  map[string]string
}

// PushResult represents the result of sending a push notification.
type PushResult struct {
	TicketID string
}

// PushSender defines the interface for sending push notifications via an external provider.
type PushSender interface {
	// Send delivers a push message (e.g., through Expo).
	Send(ctx context.Context, message PushMessage) (*PushResult, error)
}

// SendEmailInput represents the input for sending an email.
type SendEmailInput struct {
	To      string
	Name    string
	Subject string
	HTML    string
	Text    string
}

// SendEmailResult represents the result of sending an email.
type SendEmailResult struct {
	ResendID string
}

// EmailSender defines the interface for sending emails via an external provider.
type EmailSender interface {
	// Send sends an email via the email provider (e.g., Resend).
	Send(ctx context.Context, input SendEmailInput) (*SendEmailResult, error)
}
