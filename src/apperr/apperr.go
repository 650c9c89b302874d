// Package apperr defines the typed errors surfaced by the booking and
// payment services so handlers can map every rejection to a stable HTTP
// status without parsing message text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func NotFound(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

func AccessDenied(format string, args ...any) error {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

type GatewayError struct {
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

func (e *GatewayError) Unwrap() error { return e.Err }

func Gateway(err error, format string, args ...any) error {
	return &GatewayError{Message: fmt.Sprintf(format, args...), Err: err}
}

// HTTPStatus maps a service error to the status code the handler layer
// should respond with. Unrecognized errors map to 500.
func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		conflict   *ConflictError
		denied     *AccessDeniedError
		gateway    *GatewayError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &denied):
		return http.StatusForbidden
	case errors.As(err, &gateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsConflict reports whether err is a ConflictError. The sweep jobs use it
// to tell an idempotent re-run from a real failure.
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}
