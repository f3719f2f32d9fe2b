package apperr

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness or state conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrPreconditionFailed indicates an operation against a resource in the
// wrong state, e.g. dispatching an order that is not ready.
var ErrPreconditionFailed = errors.New("precondition failed")

// ErrUpstream indicates a failure in an external collaborator
// (routing provider, push gateway) surfaced to the caller.
var ErrUpstream = errors.New("upstream error")

// IllegalTransitionError is returned by the order state machine when an event
// is not valid for the current status. The order is left unchanged.
type IllegalTransitionError struct {
	Status string
	Event  string
}

func (e IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: event %q not allowed in status %q", e.Event, e.Status)
}

// IsIllegalTransition reports whether err is an IllegalTransitionError.
func IsIllegalTransition(err error) bool {
	var it IllegalTransitionError
	return errors.As(err, &it)
}
