package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/a-h/templ"
)

var (
	// ErrModuleNotFound is returned when no module is registered under a virtual path.
	ErrModuleNotFound = errors.New("view: module not found")

	// ErrNoDefaultExport is returned when a module resolves without a default component.
	ErrNoDefaultExport = errors.New("view: module has no default component")

	// ErrInvalidVPath is returned for empty or malformed virtual paths.
	ErrInvalidVPath = errors.New("view: invalid virtual path")
)

// Attrs are the properties a view component is instantiated with.
type Attrs map[string]any

// String returns the attribute as a string, or "" when absent or not a string.
func (a Attrs) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Component instantiates a renderable view from its attributes.
type Component func(attrs Attrs) templ.Component

// Module is the result of resolving a virtual path.
type Module struct {
	Default Component
	Bundles []string
}

// ConfigError reports a module that is wired incorrectly, as opposed to a
// view that failed while rendering.
type ConfigError struct {
	Err   error
	VPath string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("view %q: %v", e.VPath, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// DefaultComponent returns the module's default component or a *ConfigError
// wrapping ErrNoDefaultExport.
func DefaultComponent(vpath string, m *Module) (Component, error) {
	if m == nil || m.Default == nil {
		return nil, &ConfigError{VPath: vpath, Err: ErrNoDefaultExport}
	}
	return m.Default, nil
}

// Normalize trims surrounding slashes and whitespace from a virtual path.
func Normalize(vpath string) (string, error) {
	v := strings.Trim(strings.TrimSpace(vpath), "/")
	if v == "" || strings.Contains(v, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidVPath, vpath)
	}
	return v, nil
}

// Resolver looks up modules by virtual path.
type Resolver interface {
	Resolve(ctx context.Context, vpath string) (*Module, error)
}

// Loader resolves a module and hands it to onLoaded.
// The error returned by onLoaded is returned from Load.
type Loader interface {
	Load(ctx context.Context, vpath string, onLoaded func(*Module) error) error
}
