package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuthToken
	KindUnauthorized
	KindForbidden
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuthToken:
		return "auth_token"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "unexpected"
	}
}

// FieldError is a single field-scoped validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the failure type surfaced by services. Message is safe to show to
// clients; Err holds the underlying cause and is only ever logged.
type Error struct {
	Kind    ErrorKind
	Message string
	Details []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(details []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Details: details}
}

func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewAuthTokenError(err error) *Error {
	return &Error{Kind: KindAuthToken, Message: "Invalid token format", Err: err}
}

func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewUnexpectedError wraps err behind a generic client-facing message.
func NewUnexpectedError(message string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindUnexpected if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}
