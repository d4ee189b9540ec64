package error

import "errors"

// Profile domain errors.
var (
	// ErrProfileNotFound is returned when a user has no profile.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrUnsupportedAsset is returned when the selected asset is not tradable.
	ErrUnsupportedAsset = errors.New("unsupported asset")

	// ErrInvalidMaxPerTrade is returned when the per-trade limit is out of range.
	ErrInvalidMaxPerTrade = errors.New("max per trade must be between 1 and 10000")

	// ErrInvalidMaxPerMonth is returned when the monthly limit is out of range.
	ErrInvalidMaxPerMonth = errors.New("max per month must be between 1 and 50000")
)

// ProfileErrorCode defines error codes for profile errors.
// Format: PROF-XXYYYY where XX is category and YYYY is specific error.
type ProfileErrorCode string

const (
	ErrCodeProfileNotFound    ProfileErrorCode = "PROF-010001"
	ErrCodeUnsupportedAsset   ProfileErrorCode = "PROF-020001"
	ErrCodeInvalidMaxPerTrade ProfileErrorCode = "PROF-020002"
	ErrCodeInvalidMaxPerMonth ProfileErrorCode = "PROF-020003"
	ErrCodeMissingProfileData ProfileErrorCode = "PROF-020004"
)

// ProfileError represents a profile error with code and message.
type ProfileError struct {
	Code    ProfileErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ProfileError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ProfileError) Unwrap() error {
	return e.Err
}

// NewProfileError creates a new ProfileError with the given code and message.
func NewProfileError(code ProfileErrorCode, message string, err error) *ProfileError {
	return &ProfileError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
