package events

import (
	"errors"
	"fmt"
)

var (
	// ErrDispatch is matched by every *DispatchError.
	ErrDispatch = errors.New("event dispatch failed")

	// ErrInvalidEvent is wrapped when an event is rejected before sending,
	// for example because its name is empty.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrSenderClosed is returned by senders used after Close.
	ErrSenderClosed = errors.New("event sender closed")
)

// DispatchError reports an event the external system did not accept.
type DispatchError struct {
	EventName string
	EventID   string
	Err       error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.EventID != "" {
		return fmt.Sprintf("%s: %q (id %s): %v", ErrDispatch, e.EventName, e.EventID, e.Err)
	}
	return fmt.Sprintf("%s: %q: %v", ErrDispatch, e.EventName, e.Err)
}

// Is reports whether target is ErrDispatch.
func (e *DispatchError) Is(target error) bool {
	return target == ErrDispatch
}

// Upstream reports that the failure lies with the external event system.
func (e *DispatchError) Upstream() bool {
	return true
}

// Unwrap returns the underlying cause.
func (e *DispatchError) Unwrap() error {
	return e.Err
}
