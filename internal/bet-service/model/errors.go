package model

import (
	"errors"
	"fmt"
)

// Domain error kinds. The HTTP layer maps these to status codes and
// machine-readable kinds; nothing below leaks store or cache internals.
var (
	// ErrDuplicateSubmission means the placement tx hash was already
	// recorded. Placement is idempotent: the replay is rejected, never
	// overwritten.
	ErrDuplicateSubmission = errors.New("bet with this transaction hash already exists")

	// ErrNotFound means no bet matches the given id.
	ErrNotFound = errors.New("bet not found")

	// ErrInvalidState means the bet is outside the state the operation
	// requires, e.g. settling a bet that is no longer active.
	ErrInvalidState = errors.New("bet is not active")

	// ErrUnauthorized means the signature or its timestamp check failed.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDailyLimit means the address hit its daily placement cap.
	ErrDailyLimit = errors.New("daily bet limit reached")

	// ErrStoreUnavailable wraps record-store I/O failures. Safe to retry:
	// mutations are single conditional writes, so nothing is half-applied.
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// ValidationError reports a malformed or out-of-range input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StoreError wraps an underlying store failure so callers can match
// ErrStoreUnavailable while logs keep the cause.
func StoreError(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
