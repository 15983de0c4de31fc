package errors

import (
	"fmt"
	"time"
)

// ErrorCode classifies application errors.
type ErrorCode string

const (
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"

	// Purchase flow errors
	ErrCodeWalletDisconnected  ErrorCode = "WALLET_DISCONNECTED"
	ErrCodeWrongChain          ErrorCode = "WRONG_CHAIN"
	ErrCodePriceNotLoaded      ErrorCode = "PRICE_NOT_LOADED"
	ErrCodeInvalidTarget       ErrorCode = "INVALID_TARGET_FID"
	ErrCodeTierUnavailable     ErrorCode = "TIER_UNAVAILABLE"
	ErrCodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodePurchaseFailed      ErrorCode = "PURCHASE_FAILED"

	// External surfaces
	ErrCodeChainRead      ErrorCode = "CHAIN_READ_ERROR"
	ErrCodeFarcasterAPI   ErrorCode = "FARCASTER_API_ERROR"
	ErrCodeUsernameLookup ErrorCode = "USERNAME_LOOKUP_FAILED"

	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeCacheError      ErrorCode = "CACHE_ERROR"
)

// AppError is a typed application error.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsValidation reports whether the error is a user-correctable precondition failure.
func (e *AppError) IsValidation() bool {
	switch e.Code {
	case ErrCodeValidation, ErrCodeBadRequest,
		ErrCodeWalletDisconnected, ErrCodeWrongChain, ErrCodePriceNotLoaded,
		ErrCodeInvalidTarget, ErrCodeTierUnavailable, ErrCodeInsufficientBalance:
		return true
	}
	return false
}

// IsInternal reports whether the error is ours rather than the caller's.
func (e *AppError) IsInternal() bool {
	switch e.Code {
	case ErrCodeInternal, ErrCodeChainRead, ErrCodeCacheError:
		return true
	}
	return false
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap attaches a cause to a new application error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf is Wrap with formatting.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// NewChainReadError wraps a failed on-chain read.
func NewChainReadError(call string, err error) *AppError {
	return Wrap(err, ErrCodeChainRead, fmt.Sprintf("Chain read failed: %s", call)).
		WithDetail("call", call)
}

// NewFarcasterAPIError wraps a failed upstream Farcaster API call.
func NewFarcasterAPIError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeFarcasterAPI, fmt.Sprintf("Farcaster API operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewValidationError reports a failed input check.
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// AsAppError extracts an AppError if err is one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
