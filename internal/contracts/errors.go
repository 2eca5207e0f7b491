package contracts

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching at the transport boundary
var (
	ErrInvalidSignal       = errors.New("invalid signal")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrBatchTooLarge       = errors.New("batch too large")
	ErrInvalidPrice        = errors.New("invalid price")
)

// InvalidSignalError reports a malformed or non-coercible input field.
// Not retryable.
type InvalidSignalError struct {
	Field  string
	Value  interface{}
	Reason string
}

// NewInvalidSignalError builds an InvalidSignalError
func NewInvalidSignalError(field string, value interface{}, reason string) *InvalidSignalError {
	return &InvalidSignalError{Field: field, Value: value, Reason: reason}
}

func (e *InvalidSignalError) Error() string {
	return fmt.Sprintf("invalid signal %q (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidSignalError) Is(target error) bool { return target == ErrInvalidSignal }

// UpstreamUnavailableError reports that a required external signal could not be fetched
type UpstreamUnavailableError struct {
	Source string
	Err    error
}

// NewUpstreamUnavailableError wraps err as coming from source
func NewUpstreamUnavailableError(source string, err error) *UpstreamUnavailableError {
	return &UpstreamUnavailableError{Source: source, Err: err}
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("upstream %s unavailable: %v", e.Source, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

func (e *UpstreamUnavailableError) Is(target error) bool { return target == ErrUpstreamUnavailable }

// BatchTooLargeError is returned before any work when a batch exceeds its limit
type BatchTooLargeError struct {
	Size  int
	Limit int
}

func (e *BatchTooLargeError) Error() string {
	return fmt.Sprintf("batch of %d exceeds maximum of %d products", e.Size, e.Limit)
}

func (e *BatchTooLargeError) Is(target error) bool { return target == ErrBatchTooLarge }

// InvalidPriceError reports a non-positive price given to the pricing calculator
type InvalidPriceError struct {
	Field string
	Value float64
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price %s=%.2f: must be positive", e.Field, e.Value)
}

func (e *InvalidPriceError) Is(target error) bool { return target == ErrInvalidPrice }
