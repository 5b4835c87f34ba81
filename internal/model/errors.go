package model

import "errors"

// ErrNotFound is returned by stores when no row matches.
var ErrNotFound = errors.New("not found")

// ErrorKind classifies flow errors for the transport boundary.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindConflict    ErrorKind = "conflict"
	KindAuth        ErrorKind = "auth"
	KindNotFound    ErrorKind = "not_found"
	KindUnsupported ErrorKind = "unsupported"
	KindDispatch    ErrorKind = "dispatch"
)

// Error is a structured flow error surfaced to the transport boundary
// as a (kind, message) pair. Field is set for validation errors only.
type Error struct {
	Kind    ErrorKind
	Message string
	Field   string
}

func (e *Error) Error() string {
	return e.Message
}

// NewValidationError reports malformed input on a specific field.
func NewValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

// NewConflictError reports a uniqueness violation.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewAuthError reports a credential or OTP mismatch. Messages are kept
// deliberately low-information to prevent enumeration.
func NewAuthError(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// NewNotFoundError reports a missing identity.
func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewUnsupportedError reports an operation invalid for the identity's
// auth type.
func NewUnsupportedError(message string) *Error {
	return &Error{Kind: KindUnsupported, Message: message}
}

// NewDispatchError reports a notifier failure.
func NewDispatchError(message string) *Error {
	return &Error{Kind: KindDispatch, Message: message}
}

// KindOf extracts the error kind, or empty string for unclassified
// internal errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
