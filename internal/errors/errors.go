// Package errors defines the error types used throughout swapkit.
//
// The SwapError type carries a stable code alongside a human-readable
// message, so callers can branch on the class of failure (bad input,
// stale blockhash, transport failure, ledger rejection) without string
// matching.
package errors

import (
	"errors"
	"fmt"
)

// Error codes used across swapkit.
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodePoolNotLiquid      = "POOL_NOT_LIQUID"
	ErrCodePoolExists         = "POOL_EXISTS"
	ErrCodePoolNotFound       = "POOL_NOT_FOUND"
	ErrCodeBalanceUnavailable = "BALANCE_UNAVAILABLE"
	ErrCodeStaleBlockhash     = "STALE_BLOCKHASH"
	ErrCodeUnavailable        = "UNAVAILABLE"
	ErrCodeLedgerRejected     = "LEDGER_REJECTED"
	ErrCodeUserCancelled      = "USER_CANCELLED"
	ErrCodeInvariantViolation = "INVARIANT_VIOLATION"
	ErrCodeConfig             = "CONFIG"
)

// SwapError represents an error in swapkit.
type SwapError struct {
	// Code is a unique error code for this error type.
	Code string

	// Message is a human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *SwapError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *SwapError) Unwrap() error {
	return e.Cause
}

// Is reports whether the error matches the target by code.
func (e *SwapError) Is(target error) bool {
	t, ok := target.(*SwapError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause adds a cause to the error, returning a copy so the
// predeclared sentinels stay immutable.
func (e *SwapError) WithCause(cause error) *SwapError {
	return &SwapError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
	}
}

// NewError creates a new SwapError.
func NewError(code, message string) *SwapError {
	return &SwapError{
		Code:    code,
		Message: message,
	}
}

// Pre-defined errors for common error cases.
var (
	// ErrPoolNotLiquid is returned when a quote is requested against an
	// empty reserve or an empty share supply.
	ErrPoolNotLiquid = NewError(ErrCodePoolNotLiquid, "pool has no liquidity")

	// ErrPoolExists is returned when initialization targets a pool that is
	// already active.
	ErrPoolExists = NewError(ErrCodePoolExists, "pool already initialized")

	// ErrPoolNotFound is returned when a deposit or swap targets a pool
	// that has not been initialized.
	ErrPoolNotFound = NewError(ErrCodePoolNotFound, "pool not initialized")

	// ErrBalanceUnavailable is returned when a balance could not be read
	// from the ledger. Distinct from a balance of zero.
	ErrBalanceUnavailable = NewError(ErrCodeBalanceUnavailable, "balance unavailable")

	// ErrStaleBlockhash is returned when the freshness token expired
	// before the transaction confirmed.
	ErrStaleBlockhash = NewError(ErrCodeStaleBlockhash, "blockhash expired before confirmation")

	// ErrUserCancelled is returned by wallet signers when the user
	// declined to sign.
	ErrUserCancelled = NewError(ErrCodeUserCancelled, "user declined to sign")
)

// InvalidInput creates an input-invariant violation. These are rejected
// before any network call and are never retryable.
func InvalidInput(format string, args ...any) *SwapError {
	return NewError(ErrCodeInvalidInput, fmt.Sprintf(format, args...))
}

// InvariantViolation marks a programming-error-class failure, such as a
// sequencer plan that requires a co-signer it never created.
func InvariantViolation(format string, args ...any) *SwapError {
	return NewError(ErrCodeInvariantViolation, fmt.Sprintf(format, args...))
}

// Unavailable creates a transport failure error. Nothing was broadcast,
// so the operation is safe to retry with a fresh blockhash.
func Unavailable(what string, cause error) *SwapError {
	return NewError(ErrCodeUnavailable, fmt.Sprintf("%s unavailable", what)).WithCause(cause)
}

// ConfigError creates a configuration error.
func ConfigError(what string, cause error) *SwapError {
	return NewError(ErrCodeConfig, fmt.Sprintf("invalid %s", what)).WithCause(cause)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
