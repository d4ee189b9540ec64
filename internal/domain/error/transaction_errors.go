package error

import "errors"

// Imported bank transactions are read-only apart from the excluded flag, so
// callers can only get two things wrong: the ID or the list filter.
var (
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInvalidTransactionDate = errors.New("invalid transaction date")
)

// TransactionErrorCode identifies a transaction failure in API responses.
type TransactionErrorCode string

const (
	ErrCodeInvalidTransactionDate   TransactionErrorCode = "TXN-010002"
	ErrCodeTransactionNotFound      TransactionErrorCode = "TXN-010004"
	ErrCodeMissingTransactionFields TransactionErrorCode = "TXN-010010"
)

// TransactionError is returned by the transaction use cases. Field names the
// request parameter at fault and is empty for lookups.
type TransactionError struct {
	Code    TransactionErrorCode
	Field   string
	Message string
	Err     error
}

func (e *TransactionError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// TransactionNotFound does not say whether the ID exists for someone else.
func TransactionNotFound() *TransactionError {
	return &TransactionError{
		Code:    ErrCodeTransactionNotFound,
		Message: "transaction not found",
		Err:     ErrTransactionNotFound,
	}
}

// InvalidTransactionDate reports a date filter that is malformed or out of
// order with its counterpart.
func InvalidTransactionDate(field, message string) *TransactionError {
	return &TransactionError{
		Code:    ErrCodeInvalidTransactionDate,
		Field:   field,
		Message: message,
		Err:     ErrInvalidTransactionDate,
	}
}
