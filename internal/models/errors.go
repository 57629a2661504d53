package models

import (
	"errors"
	"fmt"
)

// Sentinel outcomes of scheduling operations. Callers branch on these with
// errors.Is; everything else coming out of a backend is a retryable failure.
var (
	// ErrEmptyWindow means a generation window produced no candidates.
	ErrEmptyWindow = errors.New("time window produces no slots")

	// ErrSlotTaken means another booking already holds the slot.
	ErrSlotTaken = errors.New("slot is already booked")

	// ErrSlotNotFound means the referenced slot does not exist (any more).
	ErrSlotNotFound = errors.New("slot not found")

	// ErrBookingNotFound means the referenced booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")
)

// ValidationError rejects malformed input before it reaches a backend.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
