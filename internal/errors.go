package internal

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/isoforge/pkg/service"
	"github.com/dmitrymomot/isoforge/pkg/view"
)

var (
	// ErrResponseEnded is returned when writing after End.
	ErrResponseEnded = errors.New("isoforge: response already ended")

	// ErrNoRoute is returned when a client-side navigation matches no route.
	ErrNoRoute = errors.New("isoforge: no route matches")

	// ErrHistoryEmpty is returned by Back and Forward at either end of the history.
	ErrHistoryEmpty = errors.New("isoforge: no history entry")
)

// HTTPError is an error carrying a status code and a user-facing message.
type HTTPError struct {
	// Err is the underlying error, for logging only.
	Err error

	// Message is the user-facing error message.
	Message string

	// Title is an optional title for the error page.
	Title string

	// Detail is an optional extended description.
	Detail string

	// Code is the HTTP status code.
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// StatusText returns the standard text for the code.
func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithErrorTitle(title string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Title = title
	}
}

func WithErrorDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Detail = detail
	}
}

func WithCause(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

// AsHTTPError converts err into an HTTPError.
// Known framework errors get their matching status; anything else is a 500.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, service.ErrNotAuthorized):
		return ErrForbidden("Forbidden", WithCause(err))
	case errors.Is(err, view.ErrModuleNotFound), errors.Is(err, ErrNoRoute):
		return ErrNotFound("Not Found", WithCause(err))
	case errors.Is(err, view.ErrInvalidVPath):
		return ErrBadRequest("Bad Request", WithCause(err))
	default:
		return ErrInternal("Internal Server Error", WithCause(err))
	}
}
