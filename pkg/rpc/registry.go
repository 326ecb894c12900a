package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrymomot/isoforge/pkg/service"
)

// Method handles one remote procedure.
type Method func(ctx context.Context, svc *service.Service, params Params) (any, error)

// Caller invokes remote procedures.
type Caller interface {
	Call(ctx context.Context, method string, args ...any) (Result, error)
}

// Params are the positional arguments of a call, still encoded.
type Params []json.RawMessage

// EncodeArgs encodes args positionally.
func EncodeArgs(args ...any) (Params, error) {
	p := make(Params, len(args))
	for i, a := range args {
		raw, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %w", ErrInvalidParams, i, err)
		}
		p[i] = raw
	}
	return p, nil
}

// Bind decodes the leading params into dst, in order.
// Fails when fewer params than destinations were sent.
func (p Params) Bind(dst ...any) error {
	if len(p) < len(dst) {
		return fmt.Errorf("%w: want %d arguments, got %d", ErrInvalidParams, len(dst), len(p))
	}
	for i, d := range dst {
		if err := json.Unmarshal(p[i], d); err != nil {
			return fmt.Errorf("%w: argument %d: %w", ErrInvalidParams, i, err)
		}
	}
	return nil
}

// Result is the encoded value a call returned.
type Result json.RawMessage

// Decode unmarshals the result into v.
func (r Result) Decode(v any) error {
	if len(r) == 0 {
		return json.Unmarshal([]byte("null"), v)
	}
	return json.Unmarshal(r, v)
}

// ValidateMethod checks that name looks like "ns.method".
func ValidateMethod(name string) error {
	if name == "" || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") ||
		!strings.Contains(name, ".") || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, name)
	}
	return nil
}

// Registry holds the methods exposed for remote invocation.
type Registry struct {
	methods map[string]Method
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{methods: make(map[string]Method)}
}

// Register adds a method. Invalid or duplicate names panic.
func (r *Registry) Register(name string, m Method) {
	if err := ValidateMethod(name); err != nil {
		panic(err)
	}
	if m == nil {
		panic(fmt.Sprintf("rpc: nil method %q", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.methods[name]; dup {
		panic(fmt.Sprintf("rpc: method %q registered twice", name))
	}
	r.methods[name] = m
}

// Namespace returns a helper registering methods under ns.
func (r *Registry) Namespace(ns string) Namespace {
	return Namespace{registry: r, prefix: ns}
}

// Methods returns the registered method names.
func (r *Registry) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	return names
}

// Has reports whether a method is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.methods[name]
	return ok
}

// Invoke runs a method in process. Failures are returned as *Error.
func (r *Registry) Invoke(ctx context.Context, svc *service.Service, name string, params Params) (Result, error) {
	r.mu.RLock()
	m, ok := r.methods[name]
	r.mu.RUnlock()
	if !ok {
		return nil, toError(fmt.Errorf("%w: %q", ErrMethodNotFound, name))
	}

	out, err := m(ctx, svc, params)
	if err != nil {
		return nil, toError(err)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, toError(fmt.Errorf("rpc: encode result of %q: %w", name, err))
	}
	return Result(raw), nil
}

// Call encodes args and invokes the method in process.
func (r *Registry) Call(ctx context.Context, svc *service.Service, method string, args ...any) (Result, error) {
	if err := ValidateMethod(method); err != nil {
		return nil, toError(err)
	}
	params, err := EncodeArgs(args...)
	if err != nil {
		return nil, toError(err)
	}
	return r.Invoke(ctx, svc, method, params)
}

// Local returns a Caller invoking the registry in process with svc.
func (r *Registry) Local(svc *service.Service) Caller {
	return localCaller{registry: r, svc: svc}
}

type localCaller struct {
	registry *Registry
	svc      *service.Service
}

func (c localCaller) Call(ctx context.Context, method string, args ...any) (Result, error) {
	return c.registry.Call(ctx, c.svc, method, args...)
}

// Namespace registers methods under a common prefix.
type Namespace struct {
	registry *Registry
	prefix   string
}

// Register adds prefix + "." + name.
func (n Namespace) Register(name string, m Method) {
	n.registry.Register(n.prefix+"."+name, m)
}
