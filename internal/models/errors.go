package models

import (
	"errors"
	"fmt"
)

// Domain errors shared by services, repositories and handlers.
// Handlers map them to HTTP statuses with errors.Is / errors.As.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidRange  = errors.New("invalid date range")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrOverlap       = errors.New("dates overlap an existing confirmed booking")
	ErrPriceMismatch = errors.New("total price does not match server computed price")
	ErrValidation    = errors.New("validation failed")
)

// PaymentProviderError wraps any failure of the remote payment provider
type PaymentProviderError struct {
	Op  string // create, retrieve, update
	Err error
}

func (e *PaymentProviderError) Error() string {
	return fmt.Sprintf("payment provider %s failed: %v", e.Op, e.Err)
}

func (e *PaymentProviderError) Unwrap() error {
	return e.Err
}

// NewValidationError wraps ErrValidation with a field-specific message
func NewValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
