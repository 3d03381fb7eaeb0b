// Package apperr defines the error kinds surfaced to API clients.  Every
// failure leaving the service layer is an *Error whose Kind decides the
// HTTP status and the machine-readable code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindConflict     Kind = "CONFLICT"
	KindNotFound     Kind = "NOT_FOUND"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindInternal     Kind = "INTERNAL_ERROR"
)

// Error is the application error.  Message is safe to show to a client;
// Err keeps the underlying cause for logs and errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// Conflict reports seats or rows already taken by someone else.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Internal hides err from the client behind a generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "something went wrong, please try again", Err: err}
}

// As extracts an *Error from err, wrapping anything else as Internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Body is the JSON envelope every failed request answers with.
func (e *Error) Body() map[string]any {
	body := map[string]any{"success": false, "code": e.Kind, "message": e.Message}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	return body
}

// FromStatus builds an error for a bare HTTP status, e.g. from the router.
func FromStatus(status int, message string) *Error {
	kind := KindInternal
	switch {
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusUnauthorized:
		kind = KindUnauthorized
	case status == http.StatusForbidden:
		kind = KindForbidden
	case status == http.StatusConflict:
		kind = KindConflict
	case status >= 400 && status < 500:
		kind = KindValidation
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{Kind: kind, Message: message}
}
