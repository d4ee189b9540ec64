package error

import "errors"

// Rule domain errors.
var (
	// ErrRuleNotFound is returned when a rule does not exist or belongs to another user.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrInvalidCategory is returned when the category is not one of the known categories.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrMerchantPatternRequired is returned when a custom rule has no merchant pattern.
	ErrMerchantPatternRequired = errors.New("merchant pattern is required for custom rules")

	// ErrMerchantPatternTooLong is returned when the merchant pattern exceeds 100 characters.
	ErrMerchantPatternTooLong = errors.New("merchant pattern too long")

	// ErrInvalidTargetSpend is returned when the target spend is out of range.
	ErrInvalidTargetSpend = errors.New("target spend must be between 0 and 10000")

	// ErrInvalidInvestType is returned when the invest type is unknown.
	ErrInvalidInvestType = errors.New("invalid invest type")

	// ErrInvestAmountRequired is returned when a fixed rule has no invest amount.
	ErrInvestAmountRequired = errors.New("invest amount is required for fixed rules")

	// ErrInvalidInvestAmount is returned when the invest amount is out of range.
	ErrInvalidInvestAmount = errors.New("invest amount must be between 1 and 1000")

	// ErrInvalidRulePeriod is returned for any period other than weekly.
	ErrInvalidRulePeriod = errors.New("invalid rule period")
)

// RuleErrorCode defines error codes for rule errors.
// Format: RULE-XXYYYY where XX is category and YYYY is specific error.
type RuleErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidCategory           RuleErrorCode = "RULE-010001"
	ErrCodeMerchantPatternRequired   RuleErrorCode = "RULE-010002"
	ErrCodeMerchantPatternTooLong    RuleErrorCode = "RULE-010003"
	ErrCodeInvalidTargetSpend        RuleErrorCode = "RULE-010004"
	ErrCodeInvalidInvestType         RuleErrorCode = "RULE-010005"
	ErrCodeInvestAmountRequired      RuleErrorCode = "RULE-010006"
	ErrCodeInvalidInvestAmount       RuleErrorCode = "RULE-010007"
	ErrCodeInvalidRulePeriod         RuleErrorCode = "RULE-010008"
	ErrCodeMissingRuleFields         RuleErrorCode = "RULE-010009"

	// Lookup errors (02XXXX)
	ErrCodeRuleNotFound RuleErrorCode = "RULE-020001"
)

// RuleError represents a rule error with code and message.
type RuleError struct {
	Code    RuleErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *RuleError) Unwrap() error {
	return e.Err
}

// NewRuleError creates a new RuleError with the given code and message.
func NewRuleError(code RuleErrorCode, message string, err error) *RuleError {
	return &RuleError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
