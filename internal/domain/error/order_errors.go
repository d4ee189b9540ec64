package error

import "errors"

// Order and trading domain errors.
var (
	// ErrOrderNotFound is returned when an order does not exist or belongs to another user.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidOrderStatus is returned for an unknown status filter.
	ErrInvalidOrderStatus = errors.New("invalid order status")

	// ErrOrderTooSmall is returned when the amount buys zero units.
	ErrOrderTooSmall = errors.New("order amount too small to purchase any shares")

	// ErrOrderInFlight is returned when a non-failed order already exists for the evaluation.
	ErrOrderInFlight = errors.New("an order already exists for this evaluation")

	// ErrBrokerageNotConnected is returned when the user has no tradable brokerage account.
	ErrBrokerageNotConnected = errors.New("brokerage not connected")

	// ErrInvestingPaused is returned when the user paused investing.
	ErrInvestingPaused = errors.New("investing is paused")

	// ErrMonthlyLimitReached is returned when placed orders already use up max_per_month.
	ErrMonthlyLimitReached = errors.New("monthly investment limit reached")

	// ErrInvalidQuote is returned when the brokerage returns a non-positive price.
	ErrInvalidQuote = errors.New("invalid quote price")

	// ErrBrokerageRequestFailed is returned when a brokerage call fails.
	ErrBrokerageRequestFailed = errors.New("brokerage request failed")

	// ErrBankNotConnected is returned when the user has no bank connections.
	ErrBankNotConnected = errors.New("bank not connected")

	// ErrBankRequestFailed is returned when a bank provider call fails.
	ErrBankRequestFailed = errors.New("bank request failed")
)

// OrderErrorCode defines error codes for order and trading errors.
// Format: ORDER-XXYYYY where XX is category and YYYY is specific error.
type OrderErrorCode string

const (
	// Lookup errors (01XXXX)
	ErrCodeOrderNotFound      OrderErrorCode = "ORDER-010001"
	ErrCodeInvalidOrderStatus OrderErrorCode = "ORDER-010002"

	// Execution errors (02XXXX)
	ErrCodeOrderTooSmall          OrderErrorCode = "ORDER-020001"
	ErrCodeOrderInFlight          OrderErrorCode = "ORDER-020002"
	ErrCodeBrokerageNotConnected  OrderErrorCode = "ORDER-020003"
	ErrCodeInvestingPaused        OrderErrorCode = "ORDER-020004"
	ErrCodeInvalidQuote           OrderErrorCode = "ORDER-020005"
	ErrCodeBrokerageRequestFailed OrderErrorCode = "ORDER-020006"
	ErrCodeMonthlyLimitReached    OrderErrorCode = "ORDER-020007"

	// Bank errors (03XXXX)
	ErrCodeBankNotConnected  OrderErrorCode = "ORDER-030001"
	ErrCodeBankRequestFailed OrderErrorCode = "ORDER-030002"
)

// OrderError represents an order error with code and message.
type OrderError struct {
	Code    OrderErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *OrderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *OrderError) Unwrap() error {
	return e.Err
}

// NewOrderError creates a new OrderError with the given code and message.
func NewOrderError(code OrderErrorCode, message string, err error) *OrderError {
	return &OrderError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
