package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrConflictData       = errors.New("data conflicts with existing data")
	ErrDataNotFound       = errors.New("data not found")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrValidation         = errors.New("invalid request data")
	ErrEmptyCart          = errors.New("order contains no items")
	ErrProductInactive    = errors.New("product is not available for sale")
	ErrInsufficientStock  = errors.New("insufficient product stock")
	ErrSignatureInvalid   = errors.New("payment signature verification failed")
	ErrOrderMismatch      = errors.New("gateway order id does not match order")
	ErrPaymentMismatch    = errors.New("order captured with different payment id")
	ErrOrderFinalized     = errors.New("order is already in a terminal state")
	ErrInternalError      = errors.New("internal error")
)

// UpstreamError reports a failed call to the payment gateway.
// The caller may retry after RetryAfter if it is non-zero.
type UpstreamError struct {
	RetryAfter time.Duration
	Err        error
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("gateway unavailable: %v", e.Err)
}

func (e UpstreamError) Unwrap() error { return e.Err }

func NewUpstreamError(err error, retryAfter time.Duration) UpstreamError {
	return UpstreamError{RetryAfter: retryAfter, Err: err}
}
