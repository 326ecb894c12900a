package logger

import (
	"context"
	"log/slog"
)

type vpathKey struct{}

// WithVPath returns a context tagged with the virtual path being rendered.
func WithVPath(ctx context.Context, vpath string) context.Context {
	return context.WithValue(ctx, vpathKey{}, vpath)
}

// VPathFromContext returns the virtual path stored by WithVPath.
func VPathFromContext(ctx context.Context) string {
	v, _ := ctx.Value(vpathKey{}).(string)
	return v
}

// VPathExtractor adds "vpath" to records logged while a view renders.
func VPathExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := VPathFromContext(ctx); v != "" {
			return slog.String("vpath", v), true
		}
		return slog.Attr{}, false
	}
}
