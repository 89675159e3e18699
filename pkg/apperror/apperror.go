// Package apperror defines the error taxonomy shared by the store, services,
// actions and the HTTP layer.
package apperror

import (
	"errors"
)

// Kind classifies an error for callers and for HTTP status mapping
type Kind string

const (
	KindAuth       Kind = "UNAUTHORIZED"
	KindNotFound   Kind = "NOT_FOUND"
	KindValidation Kind = "VALIDATION_ERROR"
	KindUnknown    Kind = "INTERNAL_SERVER_ERROR"
)

// Sentinels for errors.Is checks against a kind
var (
	ErrAuth       = &Error{Kind: KindAuth, Message: "unauthorized"}
	ErrNotFound   = &Error{Kind: KindNotFound, Message: "not found"}
	ErrValidation = &Error{Kind: KindValidation, Message: "validation failed"}
)

// Error is a classified error with a user-facing message
type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Auth returns an authentication error
func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// NotFound returns a not-found error
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Validation returns a validation error with optional details
func Validation(message, details string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Unknown wraps an unexpected failure behind a generic message
func Unknown(message string, err error) *Error {
	return &Error{Kind: KindUnknown, Message: message, Err: err}
}

// KindOf reports the kind of err, KindUnknown for unclassified errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsDomain reports whether err carries a user-facing classification
// other than KindUnknown.
func IsDomain(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind != KindUnknown
}

// As extracts the *Error from err
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
