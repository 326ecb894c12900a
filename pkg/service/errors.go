package service

import "errors"

var (
	// ErrNotAuthorized is returned when an authorization predicate resolves to false.
	ErrNotAuthorized = errors.New("service: not authorized")

	// ErrCheckFailed is returned when an authorization callback fails to produce a decision.
	ErrCheckFailed = errors.New("service: authorization check failed")
)
