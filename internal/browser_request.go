package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrymomot/isoforge/pkg/document"
	"github.com/dmitrymomot/isoforge/pkg/logger"
	"github.com/dmitrymomot/isoforge/pkg/metrics"
	"github.com/dmitrymomot/isoforge/pkg/rpc"
	"github.com/dmitrymomot/isoforge/pkg/service"
	"github.com/dmitrymomot/isoforge/pkg/session"
	"github.com/dmitrymomot/isoforge/pkg/view"
)

// NavigationController is what a BrowserRequest delegates to: history,
// remote calls, the current-view marker and the unhandled error page.
type NavigationController interface {
	Go(ctx context.Context, url string, opts ...GoOption) error
	Call(ctx context.Context, method string, args ...any) (rpc.Result, error)
	CurrentVPath() string
	SetCurrentVPath(vpath string)
	RenderUnhandledErrorPage(ctx context.Context, err error)
}

// BrowserRequestConfig carries the collaborators of a BrowserRequest.
type BrowserRequestConfig struct {
	Nav      NavigationController
	Document document.Document
	Mounter  document.Mounter
	Loader   view.Loader
	Session  *session.Session
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
	URL      *url.URL
	Defaults Defaults
}

// BrowserRequest implements Request for a client-side navigation.
// Response-shaped operations are no-ops; Render mounts into the document.
type BrowserRequest struct {
	scope

	nav     NavigationController
	doc     document.Document
	mounter document.Mounter
	loader  view.Loader
	metrics *metrics.Recorder
}

// NewBrowserRequest creates a request for one navigation.
func NewBrowserRequest(ctx context.Context, cfg BrowserRequestConfig) *BrowserRequest {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNope()
	}
	u := cfg.URL
	if u == nil {
		u = &url.URL{Path: "/"}
	}
	return &BrowserRequest{
		scope: scope{
			Context: ctx,
			head:    head{defaults: cfg.Defaults},
			svc:     service.New(cfg.Session, log),
			logger:  log,
			url:     u,
		},
		nav:     cfg.Nav,
		doc:     cfg.Document,
		mounter: cfg.Mounter,
		loader:  cfg.Loader,
		metrics: cfg.Metrics,
	}
}

func (b *BrowserRequest) bind(r *http.Request) {
	b.params = routeParams(r)
}

func (b *BrowserRequest) Method() string {
	return http.MethodGet
}

func (b *BrowserRequest) RequestHeader(string) string {
	return ""
}

func (b *BrowserRequest) Hash() string {
	return b.url.Fragment
}

func (b *BrowserRequest) Status() int {
	return http.StatusOK
}

func (b *BrowserRequest) SetStatus(int) {}

func (b *BrowserRequest) Header(string, string) {}

// Write has nowhere to send bytes in the browser; it logs them instead.
func (b *BrowserRequest) Write(p []byte) (int, error) {
	b.logger.DebugContext(b, "response body ignored in browser",
		slog.String("path", b.url.Path),
		slog.Int("bytes", len(p)),
		slog.String("body", string(p)),
	)
	return len(p), nil
}

func (b *BrowserRequest) End() error {
	return nil
}

func (b *BrowserRequest) JSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = b.Write(data)
	return err
}

func (b *BrowserRequest) Go(url string, opts ...GoOption) error {
	return b.nav.Go(b, url, opts...)
}

func (b *BrowserRequest) Call(method string, args ...any) (rpc.Result, error) {
	return b.nav.Call(b, method, args...)
}

// Render loads vpath and swaps it into the document's mount node.
//
// Once the module is loaded the document head is synced, the previous view is
// unmounted if it was a different one, and the new component is mounted.
// The current-view marker moves only after a successful mount. Any failure
// is handed to the navigation controller's error page exactly once, and
// Render still returns nil.
func (b *BrowserRequest) Render(vpath string, attrs view.Attrs) error {
	started := time.Now()
	ctx := logger.WithVPath(b, vpath)

	err := b.loader.Load(ctx, vpath, func(m *view.Module) error {
		b.doc.SetTitle(b.Title())
		b.doc.SetMeta(b.documentMeta())

		node := b.doc.MountNode()
		if b.nav.CurrentVPath() != vpath {
			if err := b.mounter.Unmount(ctx, node); err != nil {
				return err
			}
		}

		comp, err := view.DefaultComponent(vpath, m)
		if err != nil {
			return err
		}
		if err := b.mounter.Mount(ctx, comp(attrs), node); err != nil {
			return err
		}

		b.nav.SetCurrentVPath(vpath)
		return nil
	})

	b.metrics.ObserveRender(metrics.VariantBrowser, time.Since(started), err)
	if err != nil {
		b.logger.ErrorContext(ctx, "render failed", slog.Any("error", err))
		b.nav.RenderUnhandledErrorPage(ctx, err)
	}
	return nil
}

func (b *BrowserRequest) IsBrowser() bool {
	return true
}
