// Package apperr defines the error kinds the chat core reports to callers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization"
	KindPersistence   Kind = "persistence"
)

// Error is a classified application error. Details carries field-level
// information for validation failures.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
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

// Status maps the kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Public is the message safe to show a client. Persistence failures never
// expose their cause.
func (e *Error) Public() string {
	if e.Kind == KindPersistence {
		return "internal error"
	}
	return e.Message
}

func Validation(message string, details map[string]string) error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Field is shorthand for a validation error on a single field.
func Field(field, problem string) error {
	return Validation(fmt.Sprintf("%s %s", field, problem), map[string]string{field: problem})
}

func NotFound(resource string) error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Forbidden(message string) error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// Persistence wraps a store failure. op names the operation for the logs.
func Persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Message: op, Err: err}
}

// From classifies err. Anything that is not already an *Error is treated
// as a persistence failure.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindPersistence, Message: "unexpected failure", Err: err}
}

func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
