package domain

import (
	"errors"
	"fmt"
)

// ErrRequestInFlight is returned when a submission arrives while a fetch is outstanding.
var ErrRequestInFlight = errors.New("fortune request already in flight")

// ErrResultNotFound is returned when the store holds no result under the key.
var ErrResultNotFound = errors.New("saved result not found")

// ErrSessionNotFound is returned when a session ID is not registered.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionClosed is returned when an action reaches a session after Close.
var ErrSessionClosed = errors.New("session closed")

// ValidationError reports malformed form input. It is handled on the Input screen.
type ValidationError struct {
	Field   string `json:"field"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// FetchError is the single failure outcome of a fortune fetch.
// Err carries the cause for logging; callers should not branch on it.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fortune fetch: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("fortune fetch: %s", e.Op)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DecodingError reports a response body that does not match the result shape.
type DecodingError struct {
	Field string
	Err   error
}

func (e *DecodingError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode fortune result: %v", e.Err)
	}
	return fmt.Sprintf("decode fortune result: field %q: %v", e.Field, e.Err)
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// TransitionError is returned when a trigger is not legal on the current screen.
type TransitionError struct {
	From    Screen
	Trigger Trigger
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("trigger %q not allowed on screen %q", e.Trigger, e.From)
}

// InvariantError reports a navigation state that breaks a structural rule.
type InvariantError struct {
	Rule string
}

func (e *InvariantError) Error() string {
	return "navigation invariant violated: " + e.Rule
}

// IsValidationError checks if err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsFetchError checks if err is or wraps a *FetchError.
func IsFetchError(err error) bool {
	var f *FetchError
	return errors.As(err, &f)
}

// IsTransitionError checks if err is or wraps a *TransitionError.
func IsTransitionError(err error) bool {
	var t *TransitionError
	return errors.As(err, &t)
}
