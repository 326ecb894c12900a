package view

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ModuleFunc lazily produces a module.
type ModuleFunc func(ctx context.Context) (*Module, error)

// Registry maps virtual paths to lazily resolved modules.
// A successfully resolved module is kept; failures are retried on next use.
type Registry struct {
	factories map[string]ModuleFunc
	resolved  map[string]*Module
	group     singleflight.Group
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]ModuleFunc),
		resolved:  make(map[string]*Module),
	}
}

// Register adds a module factory. Registering the same path twice panics.
func (r *Registry) Register(vpath string, fn ModuleFunc) {
	v, err := Normalize(vpath)
	if err != nil {
		panic(err)
	}
	if fn == nil {
		panic(fmt.Sprintf("view: nil factory for %q", v))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[v]; dup {
		panic(fmt.Sprintf("view: %q registered twice", v))
	}
	r.factories[v] = fn
}

// Static registers a module whose default component is known up front.
func (r *Registry) Static(vpath string, c Component, bundles ...string) {
	m := &Module{Default: c, Bundles: bundles}
	r.Register(vpath, func(context.Context) (*Module, error) { return m, nil })
}

// Has reports whether a module is registered under vpath.
func (r *Registry) Has(vpath string) bool {
	v, err := Normalize(vpath)
	if err != nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[v]
	return ok
}

// Resolve returns the module for vpath, running its factory at most once
// across concurrent callers. The shared factory is not cancelled with any
// single caller; a cancelled caller stops waiting and gets ctx.Err().
func (r *Registry) Resolve(ctx context.Context, vpath string) (*Module, error) {
	v, err := Normalize(vpath)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	m, ok := r.resolved[v]
	fn, known := r.factories[v]
	r.mu.RUnlock()

	if ok {
		return m, nil
	}
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrModuleNotFound, v)
	}

	ch := r.group.DoChan(v, func() (any, error) {
		m, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, fmt.Errorf("view %q: %w", v, err)
		}
		r.mu.Lock()
		r.resolved[v] = m
		r.mu.Unlock()
		return m, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Module), nil
	}
}
