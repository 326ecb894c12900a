package isoforge

import (
	"context"
	"io/fs"
	"log/slog"
	"time"

	"github.com/dmitrymomot/isoforge/internal"
	"github.com/dmitrymomot/isoforge/pkg/document"
	"github.com/dmitrymomot/isoforge/pkg/health"
	"github.com/dmitrymomot/isoforge/pkg/logger"
	"github.com/dmitrymomot/isoforge/pkg/meta"
	"github.com/dmitrymomot/isoforge/pkg/metrics"
	"github.com/dmitrymomot/isoforge/pkg/rpc"
	"github.com/dmitrymomot/isoforge/pkg/service"
	"github.com/dmitrymomot/isoforge/pkg/session"
	"github.com/dmitrymomot/isoforge/pkg/view"
)

// Type aliases - public API
type (
	// App holds the routes, views and remote procedures shared by server
	// requests and client-side navigations.
	App = internal.App

	// Request is what handlers are written against. It hides whether the
	// handler runs on the server or in a client-side navigation.
	Request = internal.Request

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption

	// GoOption configures a navigation.
	GoOption = internal.GoOption

	// Defaults is the application-level page head.
	Defaults = internal.Defaults

	// HTTPError is an error carrying a status code and a user-facing message.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ErrorView renders the page shown for unhandled errors.
	ErrorView = internal.ErrorView

	// Browser is the client-side navigation controller.
	Browser = internal.Browser

	// BrowserOption configures a Browser.
	BrowserOption = internal.BrowserOption

	// ContextExtractor pulls a log attribute from the context.
	ContextExtractor = logger.ContextExtractor

	// Session is the identity a request borrows.
	Session = session.Session

	// SessionStore persists sessions.
	SessionStore = session.Store

	// Predicate is an authorization decision, literal or computed.
	Predicate = service.Predicate

	// Attrs are the properties a view is rendered with.
	Attrs = view.Attrs

	// MetaTag is a <meta> element.
	MetaTag = meta.Tag
)

// Errors
var (
	ErrResponseEnded    = internal.ErrResponseEnded
	ErrNoRoute          = internal.ErrNoRoute
	ErrHistoryEmpty     = internal.ErrHistoryEmpty
	ErrNotServerRequest = internal.ErrNotServerRequest
	ErrNotAuthorized    = service.ErrNotAuthorized
	ErrCheckFailed      = service.ErrCheckFailed
)

// DefaultRPCPath is where the JSON-RPC endpoint is mounted.
const DefaultRPCPath = internal.DefaultRPCPath

// New creates an application with the given options.
//
// Example:
//
//	app := isoforge.New(
//	    isoforge.WithTitle("Contacts"),
//	    isoforge.WithViews(views.Registry()),
//	    isoforge.WithHandlers(handlers.NewContacts(repo)),
//	)
//
//	err := app.Run(":8080", isoforge.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// Allow returns a predicate with a fixed decision.
func Allow(ok bool) Predicate {
	return service.Allow(ok)
}

// Check returns a predicate computed by fn.
func Check(fn service.CheckFunc) Predicate {
	return service.Check(fn)
}

// Replace overwrites the current history entry instead of pushing a new one.
func Replace() GoOption {
	return internal.Replace()
}

// App options

// WithTitle sets the default page title.
func WithTitle(title string) Option {
	return internal.WithTitle(title)
}

// WithDescription sets the default page description.
func WithDescription(desc string) Option {
	return internal.WithDescription(desc)
}

// WithMeta adds default meta tags. Invalid tags panic.
func WithMeta(tags ...MetaTag) Option {
	return internal.WithMeta(tags...)
}

// WithMetaFile loads the default head from a YAML file.
func WithMetaFile(fsys fs.FS, path string) Option {
	return internal.WithMetaFile(fsys, path)
}

// WithMiddleware adds global middleware, applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithViews replaces the view registry.
func WithViews(reg *view.Registry) Option {
	return internal.WithViews(reg)
}

// WithView registers a single view.
func WithView(vpath string, c view.Component, bundles ...string) Option {
	return internal.WithView(vpath, c, bundles...)
}

// WithMountID sets the id of the element views are mounted into.
func WithMountID(id string) Option {
	return internal.WithMountID(id)
}

// WithRPC exposes reg over JSON-RPC.
func WithRPC(reg *rpc.Registry, opts ...rpc.HandlerOption) Option {
	return internal.WithRPC(reg, opts...)
}

// WithRPCPath changes where the JSON-RPC endpoint is mounted.
func WithRPCPath(path string) Option {
	return internal.WithRPCPath(path)
}

// WithSessionStore enables session resolution from the token cookie.
func WithSessionStore(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSessionStore(store, opts...)
}

// WithSessionCookie sets the token cookie configuration.
func WithSessionCookie(cfg session.CookieConfig) SessionOption {
	return internal.WithSessionCookie(cfg)
}

// WithSessionTTL sets the lifetime of new sessions.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return internal.WithSessionTTL(ttl)
}

// WithMetrics records render and RPC metrics and serves them at path.
func WithMetrics(rec *metrics.Recorder, path string) Option {
	return internal.WithMetrics(rec, path)
}

// WithErrorView sets the component shown for unhandled errors.
func WithErrorView(v ErrorView) Option {
	return internal.WithErrorView(v)
}

// WithStaticFiles mounts a static file handler at the given pattern.
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler sets a custom handler for errors returned by handlers.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom handler for unmatched routes.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks enables liveness and readiness endpoints.
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a JSON logger tagged with a component name.
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Browser options

// WithDocument sets the document a Browser renders into.
func WithDocument(doc document.Document) BrowserOption {
	return internal.WithDocument(doc)
}

// WithMounter sets how a Browser attaches components.
func WithMounter(m document.Mounter) BrowserOption {
	return internal.WithMounter(m)
}

// WithLoader sets how a Browser loads view modules.
func WithLoader(l view.Loader) BrowserOption {
	return internal.WithLoader(l)
}

// WithCaller sets how a Browser reaches remote procedures.
func WithCaller(c rpc.Caller) BrowserOption {
	return internal.WithCaller(c)
}

// WithRemote sends a Browser's remote calls to a JSON-RPC endpoint.
func WithRemote(endpoint string, opts ...rpc.ClientOption) BrowserOption {
	return internal.WithRemote(endpoint, opts...)
}

// WithBrowserSession sets the session every navigation borrows.
func WithBrowserSession(s *Session) BrowserOption {
	return internal.WithBrowserSession(s)
}

// Run options

// Logger sets the runtime logger. If nil, runtime logging is disabled.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout bounds the graceful shutdown. Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function run before the server accepts requests.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function run after the server stopped.
//
// Example:
//
//	isoforge.ShutdownHook(redis.Shutdown(client))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets the base context used for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// AsHTTPError converts err into an HTTPError with a matching status.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// ErrNotFound creates a 404 HTTPError.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// ErrForbidden creates a 403 HTTPError.
func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

// ErrBadRequest creates a 400 HTTPError.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

// ErrInternal creates a 500 HTTPError.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// WithErrorTitle sets the title shown on the error page.
func WithErrorTitle(title string) HTTPErrorOption {
	return internal.WithErrorTitle(title)
}

// WithErrorDetail adds an extended description to the error page.
func WithErrorDetail(detail string) HTTPErrorOption {
	return internal.WithErrorDetail(detail)
}

// WithCause attaches the underlying error, for logging only.
func WithCause(err error) HTTPErrorOption {
	return internal.WithCause(err)
}

// Request helpers

// RequestValue returns a typed request-scoped value, or the zero value.
//
// Example:
//
//	tenant := isoforge.RequestValue[string](r, tenantKey{})
func RequestValue[T any](r Request, key any) T {
	if v, ok := r.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}
