package health

import "errors"

// ErrCheckTimeout is reported for a check still running when the timeout hits.
var ErrCheckTimeout = errors.New("health: check timed out")
