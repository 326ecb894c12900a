package rpc

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/isoforge/pkg/service"
)

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
	CodeNotAuthorized  = -32001
	CodeCheckFailed    = -32002
	CodeRateLimited    = -32029
)

var (
	// ErrInvalidMethod is returned for method names that are not namespace-qualified.
	ErrInvalidMethod = errors.New("rpc: method must be namespace-qualified (ns.method)")

	// ErrMethodNotFound is returned when no method is registered under a name.
	ErrMethodNotFound = errors.New("rpc: method not found")

	// ErrInvalidParams is returned when arguments cannot be bound.
	ErrInvalidParams = errors.New("rpc: invalid params")

	// ErrRateLimited is returned when the caller exceeded its request budget.
	ErrRateLimited = errors.New("rpc: rate limited")

	// ErrTransport is returned when the endpoint could not be reached or answered
	// with something other than a JSON-RPC response.
	ErrTransport = errors.New("rpc: transport failure")
)

// Error is a failed remote invocation.
type Error struct {
	cause   error
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Unwrap returns the original error for in-process calls, or the sentinel
// matching the code for calls that crossed the wire.
func (e *Error) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	switch e.Code {
	case CodeNotAuthorized:
		return service.ErrNotAuthorized
	case CodeCheckFailed:
		return service.ErrCheckFailed
	case CodeMethodNotFound:
		return ErrMethodNotFound
	case CodeInvalidParams:
		return ErrInvalidParams
	case CodeRateLimited:
		return ErrRateLimited
	}
	return nil
}

// toError maps a method failure onto a JSON-RPC error, keeping the cause.
// Internal and check failures carry a fixed message; their text stays in
// the cause, which never crosses the wire.
func toError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	code := CodeInternal
	switch {
	case errors.Is(err, service.ErrNotAuthorized):
		code = CodeNotAuthorized
	case errors.Is(err, service.ErrCheckFailed):
		code = CodeCheckFailed
	case errors.Is(err, ErrMethodNotFound):
		code = CodeMethodNotFound
	case errors.Is(err, ErrInvalidParams), errors.Is(err, ErrInvalidMethod):
		code = CodeInvalidParams
	case errors.Is(err, ErrRateLimited):
		code = CodeRateLimited
	}
	msg := err.Error()
	switch code {
	case CodeInternal:
		msg = "internal error"
	case CodeCheckFailed:
		msg = "authorization check failed"
	}
	return &Error{Code: code, Message: msg, cause: err}
}
