package error

import "errors"

// Evaluation domain errors.
var (
	// ErrEvaluationNotFound is returned when an evaluation does not exist or belongs to another user.
	ErrEvaluationNotFound = errors.New("evaluation not found")

	// ErrInvalidTransition is returned when a status change is not allowed from the current status.
	ErrInvalidTransition = errors.New("invalid evaluation status transition")

	// ErrEvaluationAlreadyExists is returned when an evaluation already exists for a rule and period.
	// Batch creation treats it as a skip, never as a failure.
	ErrEvaluationAlreadyExists = errors.New("evaluation already exists for period")

	// ErrInvalidEvaluationStatus is returned for an unknown status filter.
	ErrInvalidEvaluationStatus = errors.New("invalid evaluation status")
)

// EvaluationErrorCode defines error codes for evaluation errors.
// Format: EVAL-XXYYYY where XX is category and YYYY is specific error.
type EvaluationErrorCode string

const (
	// Lookup errors (01XXXX)
	ErrCodeEvaluationNotFound      EvaluationErrorCode = "EVAL-010001"
	ErrCodeInvalidEvaluationStatus EvaluationErrorCode = "EVAL-010002"

	// State machine errors (02XXXX)
	ErrCodeInvalidTransition EvaluationErrorCode = "EVAL-020001"
	ErrCodeAlreadyEvaluated  EvaluationErrorCode = "EVAL-020002"
)

// EvaluationError represents an evaluation error with code and message.
type EvaluationError struct {
	Code    EvaluationErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// NewEvaluationError creates a new EvaluationError with the given code and message.
func NewEvaluationError(code EvaluationErrorCode, message string, err error) *EvaluationError {
	return &EvaluationError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
