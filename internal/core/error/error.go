package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// GatewayErrorMessage describes language model failures.
	GatewayErrorMessage = "language model request failed"
	// IndexErrorMessage describes similarity index failures.
	IndexErrorMessage = "employee directory lookup failed"
)

// ErrSessionNotFound is returned when a session has no stored state.
var ErrSessionNotFound = New(nil, http.StatusNotFound, "session not found")

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// Is reports whether the target is this AppError or matches the wrapped error.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok && t == e {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return e.Err != nil && errors.As(e.Err, target)
}

// StatusOf returns the status carried by the first AppError in err's chain,
// or 500 when there is none.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the safe message of the first AppError in err's chain,
// or SystemErrorMessage when there is none.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return SystemErrorMessage
}

// WrapGateway marks err as a language model failure.
func WrapGateway(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, GatewayErrorMessage)
}

// WrapIndex marks err as a similarity index failure.
func WrapIndex(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusServiceUnavailable, IndexErrorMessage)
}
