package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/isoforge/pkg/health"
	"github.com/dmitrymomot/isoforge/pkg/logger"
	"github.com/dmitrymomot/isoforge/pkg/meta"
	"github.com/dmitrymomot/isoforge/pkg/metrics"
	"github.com/dmitrymomot/isoforge/pkg/rpc"
	"github.com/dmitrymomot/isoforge/pkg/session"
	"github.com/dmitrymomot/isoforge/pkg/view"
)

// Option configures the application.
type Option func(*App)

// WithTitle sets the default page title.
func WithTitle(title string) Option {
	return func(a *App) {
		a.defaults.Title = title
	}
}

// WithDescription sets the default page description.
func WithDescription(desc string) Option {
	return func(a *App) {
		a.defaults.Description = desc
	}
}

// WithMeta adds default meta tags. Invalid tags panic.
//
// Example:
//
//	isoforge.WithMeta(
//	    meta.Tag{Name: "viewport", Content: "width=device-width, initial-scale=1"},
//	    meta.Tag{HTTPEquiv: "X-UA-Compatible", Content: "IE=edge"},
//	)
func WithMeta(tags ...meta.Tag) Option {
	return func(a *App) {
		if a.defaults.Meta == nil {
			a.defaults.Meta = meta.Set{}
		}
		if err := a.defaults.Meta.Add(tags...); err != nil {
			panic(err)
		}
	}
}

// WithMetaFile loads the default title, description and meta tags from a
// YAML file. Values already set by earlier options are overwritten only
// when the file provides them.
//
// Example:
//
//	//go:embed head.yaml
//	var headFS embed.FS
//
//	isoforge.WithMetaFile(headFS, "head.yaml")
func WithMetaFile(fsys fs.FS, path string) Option {
	return func(a *App) {
		d, err := meta.LoadDefaults(fsys, path)
		if err != nil {
			panic(err)
		}
		tags, err := d.Set()
		if err != nil {
			panic(err)
		}
		if d.Title != "" {
			a.defaults.Title = d.Title
		}
		if d.Description != "" {
			a.defaults.Description = d.Description
		}
		a.defaults.Meta = meta.Merge(a.defaults.Meta, tags)
	}
}

// WithMiddleware adds global middleware, applied in the order provided.
// Middleware runs for server requests and client-side navigations alike.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithViews replaces the view registry.
func WithViews(reg *view.Registry) Option {
	return func(a *App) {
		if reg != nil {
			a.views = reg
		}
	}
}

// WithView registers a single view with a known default component.
func WithView(vpath string, c view.Component, bundles ...string) Option {
	return func(a *App) {
		a.views.Static(vpath, c, bundles...)
	}
}

// WithMountID sets the id of the element views are mounted into.
func WithMountID(id string) Option {
	return func(a *App) {
		if id != "" {
			a.mountID = id
		}
	}
}

// WithRPC exposes reg over JSON-RPC at the RPC path.
//
// Example:
//
//	reg := rpc.NewRegistry()
//	reg.Register("contacts.list", listContacts)
//	isoforge.WithRPC(reg, rpc.WithRateLimit(rpc.RateLimit{RPS: 30, Burst: 60}))
func WithRPC(reg *rpc.Registry, opts ...rpc.HandlerOption) Option {
	return func(a *App) {
		if reg != nil {
			a.rpc = reg
		}
		a.rpcEnabled = true
		a.rpcOptions = append(a.rpcOptions, opts...)
	}
}

// WithRPCPath changes where the JSON-RPC endpoint is mounted.
func WithRPCPath(path string) Option {
	return func(a *App) {
		if path != "" {
			a.rpcPath = path
		}
	}
}

// WithSessionStore enables session resolution from the token cookie.
//
// Example:
//
//	isoforge.WithSessionStore(session.NewRedisStore(client),
//	    isoforge.WithSessionCookie(session.CookieConfig{Secret: secret, Secure: true}),
//	)
func WithSessionStore(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessions = NewSessionManager(store, opts...)
	}
}

// WithMetrics records render and RPC metrics and serves them at path.
// An empty path records without exposing an endpoint.
func WithMetrics(rec *metrics.Recorder, path string) Option {
	return func(a *App) {
		a.metrics = rec
		a.metricsPath = path
	}
}

// WithErrorView sets the component shown for unhandled errors.
func WithErrorView(v ErrorView) Option {
	return func(a *App) {
		if v != nil {
			a.errorView = v
		}
	}
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	isoforge.WithStaticFiles("/static/", assets, "public")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}
		fileServer := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler: handler, pattern: pattern})
	}
}

// WithErrorHandler sets a custom handler for errors returned by handlers.
// Returning a non-nil error falls back to the default handling.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom handler for unmatched routes.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithHealthChecks enables liveness and readiness endpoints.
//
// Example:
//
//	isoforge.WithHealthChecks(
//	    isoforge.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger creates a JSON logger tagged with a component name.
//
// Example:
//
//	isoforge.WithLogger("web", middlewares.RequestIDExtractor(), logger.VPathExtractor())
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}
