package main

import (
	"errors"
	"fmt"
)

/* ─── Sentinel errors ────────────────────────────────────────────────── */

var (
	// ErrInvalidInput covers out-of-range or non-numeric fields and future dates.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateEntry is the store's conflict signal for a second entry on
	// the same (user_id, date).
	ErrDuplicateEntry = errors.New("entry already exists for this date")

	// ErrNotFound is returned when the referenced user or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStoreFailure marks an opaque persistence error.
	ErrStoreFailure = errors.New("store failure")
)

// inputError is a user-facing validation failure. Its message is safe to
// return to the caller as-is.
type inputError struct {
	msg string
}

func (e *inputError) Error() string        { return e.msg }
func (e *inputError) Is(target error) bool { return target == ErrInvalidInput }

// invalidInput builds an inputError with a formatted message.
func invalidInput(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

// storeError wraps a sentinel with the original driver error so callers can
// match with errors.Is while logs keep the underlying cause.
type storeError struct {
	Sentinel error
	Cause    error
}

func (e *storeError) Error() string {
	return fmt.Sprintf("%s (cause: %v)", e.Sentinel, e.Cause)
}

func (e *storeError) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *storeError) Unwrap() error        { return e.Cause }
