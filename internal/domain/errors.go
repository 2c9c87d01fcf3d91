package domain

import "errors"

// Sentinel errors shared by repositories and services. Callers compare with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// ErrEventFull is returned when admitting another attendee would exceed capacity.
	ErrEventFull = errors.New("event is full")
	// ErrDuplicateRegistration is returned when the email is already registered for the event.
	ErrDuplicateRegistration = errors.New("email already registered for this event")

	// ErrStoreUnavailable and ErrTimeout are transient; the whole admission attempt may be retried.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrTimeout          = errors.New("store operation timed out")

	// ErrCounterUnderflow is returned by DecrementFloorZero when the counter is already 0.
	ErrCounterUnderflow = errors.New("attendee count is already zero")
	// ErrInvariantViolation means attendee_count and the roster have diverged.
	ErrInvariantViolation = errors.New("attendee count invariant violated")
)

// IsTransient reports whether err is an infrastructure failure that is safe to retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrTimeout)
}
