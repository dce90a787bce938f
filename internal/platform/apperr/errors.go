// Package apperr defines the typed errors returned by the booking service.
// Every error carries a Kind, which the HTTP layer maps to a status code,
// and a stable Code that callers can match with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for the caller.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindInvalidState Kind = "invalid_state"
	KindConflict     Kind = "conflict"
	KindPolicy       Kind = "policy_violation"
	KindValidation   Kind = "validation"
	KindConcurrency  Kind = "concurrent_modification"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

// New creates an Error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewNotFoundError returns a not-found error for the given entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    strings.ToUpper(entity) + "_NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", strings.ToLower(entity), id),
	}
}

// NewValidationError returns a validation error.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: message}
}

// NewInvalidStateError returns an error for a disallowed state transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidState,
		Code:    "INVALID_TRANSITION",
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewForbiddenError returns an authorization error.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Code: "NOT_AUTHORIZED", Message: message}
}

// NewConcurrencyError returns an optimistic-locking failure.
func NewConcurrencyError(message string) *Error {
	return &Error{Kind: KindConcurrency, Code: "CONCURRENT_MODIFICATION", Message: message}
}

// KindOf returns the Kind of err, or the empty Kind for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
