package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/isoforge/pkg/document"
	"github.com/dmitrymomot/isoforge/pkg/health"
	"github.com/dmitrymomot/isoforge/pkg/logger"
	"github.com/dmitrymomot/isoforge/pkg/metrics"
	"github.com/dmitrymomot/isoforge/pkg/rpc"
	"github.com/dmitrymomot/isoforge/pkg/service"
	"github.com/dmitrymomot/isoforge/pkg/view"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
)

// DefaultRPCPath is where the JSON-RPC endpoint is mounted.
const DefaultRPCPath = "/rpc"

// App holds the routes, views, remote procedures and head defaults shared
// by server requests and client-side navigations.
// App is immutable after creation; all configuration is done via New().
type App struct {
	router                  chi.Router
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	errorView               ErrorView
	logger                  *slog.Logger
	views                   *view.Registry
	serverLoader            view.Loader
	rpc                     *rpc.Registry
	sessions                *SessionManager
	metrics                 *metrics.Recorder
	healthConfig            *healthConfig
	defaults                Defaults
	mountID                 string
	rpcPath                 string
	metricsPath             string
	rpcOptions              []rpc.HandlerOption
	middlewares             []Middleware
	handlers                []Handler
	staticRoutes            []staticRoute
	rpcEnabled              bool
}

type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates an application with the given options.
//
// Example:
//
//	app := isoforge.New(
//	    isoforge.WithTitle("Contacts"),
//	    isoforge.WithViews(views),
//	    isoforge.WithHandlers(handlers.NewContacts(repo)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:    chi.NewRouter(),
		logger:    logger.NewNope(),
		views:     view.NewRegistry(),
		rpc:       rpc.NewRegistry(),
		mountID:   document.DefaultMountID,
		rpcPath:   DefaultRPCPath,
		errorView: DefaultErrorView,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.sessions != nil {
		a.sessions.setLogger(a.logger)
	}
	a.serverLoader = view.NewDirect(a.views)

	a.setupRoutes()
	return a
}

// ServeHTTP makes App an http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Defaults returns the application head defaults.
func (a *App) Defaults() Defaults {
	return Defaults{
		Title:       a.defaults.Title,
		Description: a.defaults.Description,
		Meta:        a.defaults.Meta.Clone(),
	}
}

// Views returns the view registry.
func (a *App) Views() *view.Registry {
	return a.views
}

// RPC returns the remote procedure registry.
func (a *App) RPC() *rpc.Registry {
	return a.rpc
}

// Sessions returns the session manager, or nil when sessions are not configured.
func (a *App) Sessions() *SessionManager {
	return a.sessions
}

// Run starts the HTTP server and blocks until shutdown.
//
// Example:
//
//	err := app.Run(":8080", isoforge.Logger(log))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

func (a *App) setupRoutes() {
	notFound := a.notFoundHandler
	if notFound == nil {
		notFound = func(Request) error { return ErrNoRoute }
	}
	a.router.NotFound(a.adaptHandler(notFound))

	methodNotAllowed := a.methodNotAllowedHandler
	if methodNotAllowed == nil {
		methodNotAllowed = func(Request) error {
			return NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed")
		}
	}
	a.router.MethodNotAllowed(a.adaptHandler(methodNotAllowed))

	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath,
			health.ReadinessHandler(a.healthConfig.checks, health.WithLogger(a.logger)))
	}

	if a.metrics != nil && a.metricsPath != "" {
		a.router.Handle(a.metricsPath, a.metrics.Handler())
	}

	if a.rpcEnabled {
		opts := append([]rpc.HandlerOption{
			rpc.WithLogger(a.logger),
			rpc.WithObserver(a.observeEndpointCall),
		}, a.rpcOptions...)
		a.router.Handle(a.rpcPath, rpc.NewHandler(a.rpc, a.rpcService, opts...))
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// observeCall records an in-process call. A denial it returns is counted by
// handleError once the handler gives it back.
func (a *App) observeCall(method string, elapsed time.Duration, err error) {
	if !a.rpc.Has(method) {
		method = rpc.UnknownMethod
	}
	a.metrics.ObserveCall(method, elapsed, err)
}

// observeEndpointCall records a call served over the wire. Its denials never
// reach handleError.
func (a *App) observeEndpointCall(method string, elapsed time.Duration, err error) {
	a.metrics.ObserveCall(method, elapsed, err)
	if errors.Is(err, service.ErrNotAuthorized) {
		a.metrics.ObserveDenied()
	}
}

// rpcService builds the per-call service from the request session.
func (a *App) rpcService(r *http.Request) (*service.Service, error) {
	return service.New(a.sessions.Load(r), a.logger), nil
}

// handleError routes a handler error to the custom error handler first.
// If that is absent or fails, browser requests get the unhandled error page
// and server requests an error document with the matching status.
func (a *App) handleError(req Request, err error) {
	if errors.Is(err, service.ErrNotAuthorized) {
		a.metrics.ObserveDenied()
	}

	if a.errorHandler != nil {
		herr := a.errorHandler(req, err)
		if herr == nil {
			return
		}
		err = herr
	}

	switch r := req.(type) {
	case *BrowserRequest:
		r.nav.RenderUnhandledErrorPage(r, err)
	case *serverRequest:
		a.writeServerError(r, err)
	}
}

func (a *App) writeServerError(r *serverRequest, err error) {
	httpErr := AsHTTPError(err)
	if httpErr.Code >= http.StatusInternalServerError {
		a.logger.ErrorContext(r, "request failed",
			slog.String("method", r.Method()),
			slog.String("path", r.URL().Path),
			slog.Any("error", err),
		)
	} else {
		a.logger.DebugContext(r, "request rejected",
			slog.Int("status", httpErr.Code),
			slog.Any("error", err),
		)
	}

	if r.ended || r.w.Written() {
		return
	}

	r.SetStatus(httpErr.Code)
	r.SetTitle(errorPageTitle)
	if werr := r.writeView(context.WithoutCancel(r), nil, a.errorView(httpErr)); werr != nil {
		a.logger.ErrorContext(r, "error page render failed", slog.Any("error", werr))
		if !r.w.Written() {
			http.Error(r.w, httpErr.StatusText(), httpErr.Code)
		}
	}
}

type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
//
// Example:
//
//	isoforge.WithReadinessCheck("redis", redis.Healthcheck(client))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
