package view

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Serial is a Loader that admits one active load at a time.
// The gate is held until onLoaded returns, so callers queue behind the whole
// load-and-mount transition of the previous caller.
type Serial struct {
	resolver Resolver
	gate     *semaphore.Weighted
}

// NewSerial creates a gated loader over resolver.
func NewSerial(resolver Resolver) *Serial {
	return &Serial{resolver: resolver, gate: semaphore.NewWeighted(1)}
}

// Load waits for the gate, resolves vpath and calls onLoaded.
// Returns ctx.Err() if the context ends while queued.
func (l *Serial) Load(ctx context.Context, vpath string, onLoaded func(*Module) error) error {
	if err := l.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.gate.Release(1)

	m, err := l.resolver.Resolve(ctx, vpath)
	if err != nil {
		return err
	}
	return onLoaded(m)
}

// Direct is a Loader without a gate.
type Direct struct {
	resolver Resolver
}

// NewDirect creates an ungated loader over resolver.
func NewDirect(resolver Resolver) *Direct {
	return &Direct{resolver: resolver}
}

func (l *Direct) Load(ctx context.Context, vpath string, onLoaded func(*Module) error) error {
	m, err := l.resolver.Resolve(ctx, vpath)
	if err != nil {
		return err
	}
	return onLoaded(m)
}
