package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the feature and strategy layers.
var (
	// ErrInsufficientData means a rolling window or resample bucket cannot
	// be computed from the bars provided. The run does not start.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidLayerConfig means the layer schedule is unusable: mismatched
	// list lengths or a non-positive position size that would poison the
	// average-entry-price division.
	ErrInvalidLayerConfig = errors.New("invalid layer configuration")
)

// ErrorCategory classifies errors from the data and exchange layers.
type ErrorCategory string

const (
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
	ErrorCategoryData          ErrorCategory = "DATA"
	ErrorCategoryNetwork       ErrorCategory = "NETWORK"
	ErrorCategoryRateLimit     ErrorCategory = "RATE_LIMIT"
	ErrorCategoryExchange      ErrorCategory = "EXCHANGE"
)

// BotError is a categorized error with component/operation context.
type BotError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Retryable  bool
}

func (e *BotError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

func (e *BotError) Unwrap() error {
	return e.Underlying
}

// IsRetryable reports whether the operation that produced this error can
// be retried.
func (e *BotError) IsRetryable() bool {
	return e.Retryable
}

// New creates a categorized error.
func New(category ErrorCategory, component, operation, message string) *BotError {
	return &BotError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Retryable: isRetryableCategory(category),
	}
}

// Wrap wraps an existing error with category and context.
func Wrap(err error, category ErrorCategory, component, operation string) *BotError {
	if err == nil {
		return nil
	}
	return &BotError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Retryable:  isRetryableCategory(category),
	}
}

// WithRetryable overrides the retryable flag.
func (e *BotError) WithRetryable(retryable bool) *BotError {
	e.Retryable = retryable
	return e
}

func isRetryableCategory(category ErrorCategory) bool {
	switch category {
	case ErrorCategoryNetwork, ErrorCategoryRateLimit, ErrorCategoryExchange:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether err (or anything it wraps) is a retryable
// BotError.
func IsRetryable(err error) bool {
	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr.Retryable
	}
	return false
}
