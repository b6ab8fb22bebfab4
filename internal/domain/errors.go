package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so the delivery layer can map them to
// status codes without inspecting messages.
type ErrorKind string

const (
	KindInvalidInput     ErrorKind = "invalid_input"
	KindNotFound         ErrorKind = "not_found"
	KindValidationFailed ErrorKind = "validation_failed"
)

// Sentinels for errors.Is checks. Every *Error matches the sentinel of its kind.
var (
	ErrInvalidInput     = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrNotFound         = &Error{Kind: KindNotFound, Message: "not found"}
	ErrValidationFailed = &Error{Kind: KindValidationFailed, Message: "validation failed"}

	ErrCarrierNotFound = &Error{Kind: KindNotFound, Message: "carrier not found"}
	ErrServiceNotFound = &Error{Kind: KindNotFound, Message: "service not found"}
	ErrRateNotFound    = &Error{Kind: KindNotFound, Message: "no rate for this weight and destination"}
)

// Error is the typed error returned by the pricing engine and the usecases.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error

	// base is the named sentinel this error was derived from, if any.
	base *Error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels and, for the named not-found sentinels, the
// exact sentinel the error was built from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	switch t {
	case ErrInvalidInput, ErrNotFound, ErrValidationFailed:
		return e.Kind == t.Kind
	}
	return e == t || e.base == t
}

// InvalidInput builds a KindInvalidInput error.
func InvalidInput(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// ValidationFailed builds a KindValidationFailed error.
func ValidationFailed(format string, args ...interface{}) error {
	return &Error{Kind: KindValidationFailed, Message: fmt.Sprintf(format, args...)}
}

// NotFound wraps one of the not-found sentinels with the id that was looked up.
func NotFound(sentinel *Error, id string) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s: %s", sentinel.Message, id), base: sentinel}
}

// KindOf reports the kind of err, or "" if err is not a domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
