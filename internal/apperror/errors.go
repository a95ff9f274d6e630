package apperror

import (
	"errors"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("conflict")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Error carries a kind plus an operator-facing message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// Error implements error.
func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Kind.Error() + ": " + e.Err.Error()
	default:
		return e.Kind.Error()
	}
}

// Unwrap exposes the cause so errors.Is reaches repository sentinels.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Validation reports malformed or missing input.
func Validation(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

// TooLong reports a value the datastore rejected for exceeding its column length.
func TooLong(cause error) error {
	return &Error{Kind: ErrValidation, Message: "a value exceeds its maximum length", Err: cause}
}

// NotFound reports a reference that does not resolve.
func NotFound(message string, cause error) error {
	return &Error{Kind: ErrNotFound, Message: message, Err: cause}
}

// Conflict reports a write that would break a uniqueness invariant.
func Conflict(message string, cause error) error {
	return &Error{Kind: ErrConflict, Message: message, Err: cause}
}

// Backend wraps an infrastructure failure of the datastore.
func Backend(cause error) error {
	return &Error{Kind: ErrBackendUnavailable, Err: cause}
}

// KindOf returns the kind of err, or nil when err is not classified.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrBackendUnavailable} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
