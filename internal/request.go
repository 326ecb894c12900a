package internal

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/dmitrymomot/isoforge/pkg/meta"
	"github.com/dmitrymomot/isoforge/pkg/rpc"
	"github.com/dmitrymomot/isoforge/pkg/service"
	"github.com/dmitrymomot/isoforge/pkg/session"
	"github.com/dmitrymomot/isoforge/pkg/view"
)

// Request is the contract handlers are written against.
// It has two implementations: one serving an HTTP request on the server and
// one driven by the Browser navigation controller. A handler that sticks to
// this interface runs unchanged in both.
type Request interface {
	context.Context

	// Session returns the session borrowed for the request (nil when anonymous).
	Session() *session.Session

	// Service returns the per-request service bound to the session and logger.
	Service() *service.Service

	// Authorize runs the authorization gate against the request session.
	Authorize(p service.Predicate) error

	// Method returns the HTTP method. Client-side navigations are always GET.
	Method() string

	// URL returns the requested URL.
	URL() *url.URL

	// Query returns the parsed query string.
	Query() url.Values

	// RequestHeader returns an incoming request header. Client-side
	// navigations carry no headers and always return "".
	RequestHeader(name string) string

	// Hash returns the URL fragment. Browsers never send it, so it is
	// always empty on the server.
	Hash() string

	// Param returns a route parameter.
	Param(name string) string

	// Params returns all route parameters.
	Params() map[string]string

	// Title returns the title override, or the application default when the
	// override is empty.
	Title() string

	// SetTitle overrides the page title for this request.
	SetTitle(title string)

	// Description follows the same rule as Title.
	Description() string

	// SetDescription overrides the page description for this request.
	SetDescription(desc string)

	// Meta validates and stores tags for this request. No tag is stored when
	// any of them is invalid.
	Meta(tags ...meta.Tag) error

	// GetMeta returns the application meta set merged with this request's
	// tags. Request tags win on key collision.
	GetMeta() meta.Set

	// Status returns the response status. Always 200 in the browser.
	Status() int

	// SetStatus sets the response status. Ignored in the browser.
	SetStatus(code int)

	// Header sets a response header. Ignored in the browser.
	Header(name, value string)

	// Write appends to the response body. In the browser nothing is sent;
	// the bytes are logged at debug level.
	Write(p []byte) (int, error)

	// End finishes the response. Later writes fail with ErrResponseEnded.
	End() error

	// JSON writes v as a JSON response.
	JSON(v any) error

	// Go navigates to url.
	Go(url string, opts ...GoOption) error

	// Call invokes a remote procedure. The method name must be
	// namespace-qualified ("ns.method"). Failures are returned as errors,
	// never as a zero result.
	Call(method string, args ...any) (rpc.Result, error)

	// Render shows the view registered under vpath with attrs.
	// In the browser render failures are routed to the error page and
	// Render returns nil.
	Render(vpath string, attrs view.Attrs) error

	// Log writes an info record through the request logger.
	Log(msg string, args ...any)

	// Logger returns the request logger.
	Logger() *slog.Logger

	// Set stores a request-scoped value.
	Set(key, value any)

	// Get returns a request-scoped value.
	Get(key any) any

	// IsBrowser reports whether the request is a client-side navigation.
	IsBrowser() bool
}

// GoOption configures a navigation.
type GoOption func(*goConfig)

type goConfig struct {
	replace bool
}

// Replace overwrites the current history entry instead of pushing a new one.
func Replace() GoOption {
	return func(c *goConfig) {
		c.replace = true
	}
}

func newGoConfig(opts ...GoOption) goConfig {
	var cfg goConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Defaults is the application-level head every request falls back to.
type Defaults struct {
	Meta        meta.Set
	Title       string
	Description string
}

// head holds the per-request overrides on top of Defaults.
type head struct {
	defaults    Defaults
	meta        meta.Set
	title       string
	description string
}

func (h *head) Title() string {
	return meta.Resolve(h.title, h.defaults.Title)
}

func (h *head) SetTitle(title string) {
	h.title = title
}

func (h *head) Description() string {
	return meta.Resolve(h.description, h.defaults.Description)
}

func (h *head) SetDescription(desc string) {
	h.description = desc
}

func (h *head) Meta(tags ...meta.Tag) error {
	if h.meta == nil {
		h.meta = meta.Set{}
	}
	return h.meta.Add(tags...)
}

func (h *head) GetMeta() meta.Set {
	return meta.Merge(h.defaults.Meta, h.meta)
}

// documentMeta is GetMeta plus a description tag derived from Description,
// unless a description tag is already present.
func (h *head) documentMeta() meta.Set {
	tags := h.GetMeta()
	if _, ok := tags.Get("description"); !ok {
		if desc := h.Description(); desc != "" {
			tags["description"] = meta.Tag{Name: "description", Content: desc}
		}
	}
	return tags
}

// scope is the state shared by both request variants.
type scope struct {
	context.Context
	head

	svc    *service.Service
	logger *slog.Logger
	url    *url.URL
	params map[string]string
}

func (s *scope) Session() *session.Session {
	return s.svc.Session()
}

func (s *scope) Service() *service.Service {
	return s.svc
}

func (s *scope) Authorize(p service.Predicate) error {
	return s.svc.Authorize(s, p)
}

func (s *scope) URL() *url.URL {
	return s.url
}

func (s *scope) Query() url.Values {
	return s.url.Query()
}

func (s *scope) Param(name string) string {
	return s.params[name]
}

func (s *scope) Params() map[string]string {
	out := make(map[string]string, len(s.params))
	for k, v := range s.params {
		out[k] = v
	}
	return out
}

func (s *scope) Log(msg string, args ...any) {
	s.logger.InfoContext(s, msg, args...)
}

func (s *scope) Logger() *slog.Logger {
	return s.logger
}

func (s *scope) Set(key, value any) {
	s.Context = context.WithValue(s.Context, key, value)
}

func (s *scope) Get(key any) any {
	return s.Context.Value(key)
}
