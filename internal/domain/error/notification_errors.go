package error

import "errors"

// Notification domain errors.
var (
	// ErrNotificationQueueFailed is returned when a notification fails to be queued.
	ErrNotificationQueueFailed = errors.New("failed to queue notification")

	// ErrInvalidTemplate is returned when an unknown notification kind is rendered.
	ErrInvalidTemplate = errors.New("invalid notification template")

	// ErrTemplateRenderFailed is returned when template rendering fails.
	ErrTemplateRenderFailed = errors.New("failed to render notification template")

	// ErrNotificationJobNotFound is returned when a notification job is not found.
	ErrNotificationJobNotFound = errors.New("notification job not found")

	// ErrNoRecipient is returned when the user has no push token or email for the channel.
	ErrNoRecipient = errors.New("no recipient for channel")

	// ErrDeviceNotRegistered is returned when the push provider rejects the device token.
	ErrDeviceNotRegistered = errors.New("device not registered")

	// ErrPermanentDeliveryFailure is returned when delivery fails with a permanent error.
	ErrPermanentDeliveryFailure = errors.New("permanent delivery failure")

	// ErrTemporaryDeliveryFailure is returned when delivery fails with a temporary error.
	ErrTemporaryDeliveryFailure = errors.New("temporary delivery failure")
)

// NotificationErrorCode defines error codes for notification errors.
// Format: NOTIF-XXYYYY where XX is category and YYYY is specific error.
type NotificationErrorCode string

const (
	// Queue errors (01XXXX)
	ErrCodeNotificationQueueFailed NotificationErrorCode = "NOTIF-010001"
	ErrCodeNotificationJobNotFound NotificationErrorCode = "NOTIF-010002"

	// Delivery errors (02XXXX)
	ErrCodePermanentDeliveryFailure NotificationErrorCode = "NOTIF-020002"
	ErrCodeTemporaryDeliveryFailure NotificationErrorCode = "NOTIF-020003"

	// Template errors (03XXXX)
	ErrCodeInvalidTemplate      NotificationErrorCode = "NOTIF-030001"
	ErrCodeTemplateRenderFailed NotificationErrorCode = "NOTIF-030002"
)

// NotificationError represents a notification error with code and message.
type NotificationError struct {
	Code    NotificationErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *NotificationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *NotificationError) Unwrap() error {
	return e.Err
}

// NewNotificationError creates a new NotificationError with the given code and message.
func NewNotificationError(code NotificationErrorCode, message string, err error) *NotificationError {
	return &NotificationError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsPermanent reports whether err is a permanent delivery failure.
func IsPermanent(err error) bool {
	var notifErr *NotificationError
	return errors.As(err, &notifErr) && notifErr.Code == ErrCodePermanentDeliveryFailure
}
