// Package apperr provides standardized domain error types for the application.
// Domain services return these typed errors, and the HTTP layer maps them to
// status codes. Persistence and propagation failures carry the driver error in
// Err but never expose it in Message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates an entity id did not resolve.
	KindNotFound
	// KindValidation indicates invalid input data (bad enum value, missing id).
	KindValidation
	// KindBadRequest indicates a malformed or invalid request.
	KindBadRequest
	// KindConflict indicates a conflict with existing state (e.g., duplicate).
	KindConflict
	// KindPersistence indicates a repository/database failure.
	KindPersistence
	// KindPropagation indicates a secondary side effect failed after the
	// primary write succeeded. It is logged, never returned to callers.
	KindPropagation
	// KindForbidden indicates the action is not allowed for the user.
	KindForbidden
	// KindUnauthorized indicates authentication is required or failed.
	KindUnauthorized
	// KindInternal indicates an unexpected internal error.
	KindInternal
)

// GenericFailureMessage is rendered for failures whose detail must not leak.
const GenericFailureMessage = "operation failed"

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindNotFound:     "not_found",
	KindValidation:   "validation",
	KindBadRequest:   "bad_request",
	KindConflict:     "conflict",
	KindPersistence:  "persistence",
	KindPropagation:  "propagation",
	KindForbidden:    "forbidden",
	KindUnauthorized: "unauthorized",
	KindInternal:     "internal",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Op      string      // Operation that failed (optional)
	Err     error       // Underlying error (optional)
	Details interface{} // Additional details for response (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to show to API callers.
func (e *Error) PublicMessage() string {
	switch e.Kind {
	case KindPersistence, KindPropagation, KindInternal, KindUnknown:
		return GenericFailureMessage
	default:
		return e.Message
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp sets the operation on the error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails sets additional details on the error.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// InvalidValue creates a validation error naming the rejected input.
func InvalidValue(field, value string) *Error {
	return New(KindValidation, fmt.Sprintf("invalid %s: %q", field, value)).
		WithDetails(map[string]string{"field": field, "value": value})
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Conflict creates a conflict error (e.g., duplicate resource).
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Persistence wraps a repository failure.
func Persistence(op string, err error) *Error {
	return Wrap(KindPersistence, "persistence failure", err).WithOp(op)
}

// Propagation wraps a failed secondary side effect.
func Propagation(op string, err error) *Error {
	return Wrap(KindPropagation, "side effect failed", err).WithOp(op)
}

// Forbidden creates a forbidden error.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// GetKind extracts the error kind from an error chain.
// Returns KindUnknown if no *Error is present.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err carries an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// IsNotFound reports whether err resolves to KindNotFound.
func IsNotFound(err error) bool {
	return Is(err, KindNotFound)
}
