package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrymomot/isoforge/pkg/document"
	"github.com/dmitrymomot/isoforge/pkg/logger"
	"github.com/dmitrymomot/isoforge/pkg/rpc"
	"github.com/dmitrymomot/isoforge/pkg/service"
	"github.com/dmitrymomot/isoforge/pkg/session"
	"github.com/dmitrymomot/isoforge/pkg/view"
)

// Browser is the client-side navigation controller. It owns the history,
// the current location and the current-view marker, and dispatches every
// navigation through the application's router with a BrowserRequest.
type Browser struct {
	app     *App
	doc     document.Document
	mounter document.Mounter
	loader  view.Loader
	caller  rpc.Caller
	session *session.Session
	logger  *slog.Logger

	history []*url.URL
	current string
	cursor  int
	mu      sync.Mutex
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithDocument sets the host document. Defaults to a headless document.
func WithDocument(doc document.Document) BrowserOption {
	return func(b *Browser) {
		b.doc = doc
	}
}

// WithMounter sets the component mounter. Defaults to document.TemplMounter.
func WithMounter(m document.Mounter) BrowserOption {
	return func(b *Browser) {
		b.mounter = m
	}
}

// WithLoader sets the module loader. Defaults to a serial loader over the
// application's views.
func WithLoader(l view.Loader) BrowserOption {
	return func(b *Browser) {
		b.loader = l
	}
}

// WithCaller sets how remote procedures are reached.
// Defaults to invoking the application's registry in process.
func WithCaller(c rpc.Caller) BrowserOption {
	return func(b *Browser) {
		b.caller = c
	}
}

// WithRemote sends remote procedure calls to a JSON-RPC endpoint.
func WithRemote(endpoint string, opts ...rpc.ClientOption) BrowserOption {
	return func(b *Browser) {
		b.caller = rpc.NewClient(endpoint, opts...)
	}
}

// WithBrowserSession sets the session every navigation borrows.
func WithBrowserSession(s *session.Session) BrowserOption {
	return func(b *Browser) {
		b.session = s
	}
}

// NewBrowser creates a navigation controller for the app.
func (a *App) NewBrowser(opts ...BrowserOption) *Browser {
	b := &Browser{
		app:    a,
		logger: a.logger,
		cursor: -1,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.doc == nil {
		b.doc = document.NewHeadless(a.mountID)
	}
	if b.mounter == nil {
		b.mounter = document.TemplMounter{}
	}
	if b.loader == nil {
		b.loader = view.NewSerial(a.views)
	}
	if b.caller == nil {
		b.caller = a.rpc.Local(service.New(b.session, b.logger))
	}
	return b
}

// Document returns the host document.
func (b *Browser) Document() document.Document {
	return b.doc
}

// Start loads the initial location.
func (b *Browser) Start(ctx context.Context, rawURL string) error {
	return b.Go(ctx, rawURL, Replace())
}

// Go resolves rawURL against the current location, records it in the
// history and dispatches it. Handler failures end up on the error page;
// only an unparsable URL is returned as an error.
func (b *Browser) Go(ctx context.Context, rawURL string, opts ...GoOption) error {
	cfg := newGoConfig(opts...)

	b.mu.Lock()
	target, err := b.resolve(rawURL)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	if cfg.replace && b.cursor >= 0 {
		b.history[b.cursor] = target
	} else {
		b.history = append(b.history[:b.cursor+1], target)
		b.cursor++
	}
	b.mu.Unlock()

	b.dispatch(ctx, target)
	return nil
}

// Back moves one entry back in the history and dispatches it.
func (b *Browser) Back(ctx context.Context) error {
	return b.step(ctx, -1)
}

// Forward moves one entry forward in the history and dispatches it.
func (b *Browser) Forward(ctx context.Context) error {
	return b.step(ctx, 1)
}

func (b *Browser) step(ctx context.Context, delta int) error {
	b.mu.Lock()
	next := b.cursor + delta
	if next < 0 || next >= len(b.history) {
		b.mu.Unlock()
		return ErrHistoryEmpty
	}
	b.cursor = next
	target := b.history[next]
	b.mu.Unlock()

	b.dispatch(ctx, target)
	return nil
}

// Location returns a copy of the current URL, or nil before Start.
func (b *Browser) Location() *url.URL {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cursor < 0 {
		return nil
	}
	u := *b.history[b.cursor]
	return &u
}

// Call invokes a remote procedure through the configured caller.
func (b *Browser) Call(ctx context.Context, method string, args ...any) (rpc.Result, error) {
	if err := rpc.ValidateMethod(method); err != nil {
		return nil, err
	}
	started := time.Now()
	res, err := b.caller.Call(ctx, method, args...)
	b.app.observeCall(method, time.Since(started), err)
	return res, err
}

// CurrentVPath returns the vpath last mounted.
func (b *Browser) CurrentVPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// SetCurrentVPath records the vpath just mounted.
func (b *Browser) SetCurrentVPath(vpath string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = vpath
}

// RenderUnhandledErrorPage replaces the mount node with the error view.
// The current-view marker is left untouched.
func (b *Browser) RenderUnhandledErrorPage(ctx context.Context, err error) {
	httpErr := AsHTTPError(err)
	b.logger.ErrorContext(ctx, "unhandled navigation error",
		slog.String("vpath", logger.VPathFromContext(ctx)),
		slog.Int("status", httpErr.Code),
		slog.Any("error", err),
	)

	b.doc.SetTitle(errorPageTitle)
	node := b.doc.MountNode()
	if uerr := b.mounter.Unmount(ctx, node); uerr != nil {
		b.logger.ErrorContext(ctx, "error page unmount failed", slog.Any("error", uerr))
	}
	if merr := b.mounter.Mount(ctx, b.app.errorView(httpErr), node); merr != nil {
		b.logger.ErrorContext(ctx, "error page mount failed", slog.Any("error", merr))
	}
}

func (b *Browser) resolve(rawURL string) (*url.URL, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("isoforge: navigate to %q: %w", rawURL, err)
	}
	if b.cursor < 0 {
		base := &url.URL{Path: "/"}
		return base.ResolveReference(ref), nil
	}
	return b.history[b.cursor].ResolveReference(ref), nil
}

// dispatch runs the application's router for target with a BrowserRequest.
func (b *Browser) dispatch(ctx context.Context, target *url.URL) {
	req := NewBrowserRequest(ctx, BrowserRequestConfig{
		Nav:      b,
		Document: b.doc,
		Mounter:  b.mounter,
		Loader:   b.loader,
		Session:  b.session,
		Logger:   b.logger,
		Metrics:  b.app.metrics,
		URL:      target,
		Defaults: b.app.defaults,
	})

	hr, err := http.NewRequestWithContext(withRequest(ctx, req), http.MethodGet, target.String(), nil)
	if err != nil {
		b.RenderUnhandledErrorPage(ctx, err)
		return
	}
	b.app.router.ServeHTTP(discardWriter{header: make(http.Header)}, hr)
}

// discardWriter absorbs whatever a non-isoforge handler writes during a
// client-side dispatch.
type discardWriter struct {
	header http.Header
}

func (w discardWriter) Header() http.Header         { return w.header }
func (w discardWriter) Write(p []byte) (int, error) { return len(p), nil }
func (w discardWriter) WriteHeader(int)             {}
