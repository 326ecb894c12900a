package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/isoforge/pkg/document"
	"github.com/dmitrymomot/isoforge/pkg/htmx"
	"github.com/dmitrymomot/isoforge/pkg/logger"
	"github.com/dmitrymomot/isoforge/pkg/metrics"
	"github.com/dmitrymomot/isoforge/pkg/rpc"
	"github.com/dmitrymomot/isoforge/pkg/service"
	"github.com/dmitrymomot/isoforge/pkg/view"
)

// serverRequest implements Request on top of an HTTP exchange.
type serverRequest struct {
	scope

	app   *App
	w     *ResponseWriter
	r     *http.Request
	ended bool
}

func (a *App) newServerRequest(w http.ResponseWriter, r *http.Request) *serverRequest {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w, htmx.IsHTMX(r))
	}

	sess := a.sessions.Load(r)
	return &serverRequest{
		scope: scope{
			Context: r.Context(),
			head:    head{defaults: a.defaults},
			svc:     service.New(sess, a.logger),
			logger:  a.logger,
			url:     r.URL,
			params:  routeParams(r),
		},
		app: a,
		w:   rw,
		r:   r,
	}
}

// bind refreshes the routing state after the request travelled further down
// the middleware chain.
func (s *serverRequest) bind(r *http.Request) {
	s.r = r
	s.url = r.URL
	s.params = routeParams(r)
}

func (s *serverRequest) Method() string {
	return s.r.Method
}

func (s *serverRequest) RequestHeader(name string) string {
	return s.r.Header.Get(name)
}

func (s *serverRequest) Hash() string {
	return ""
}

func (s *serverRequest) Status() int {
	return s.w.Status()
}

func (s *serverRequest) SetStatus(code int) {
	s.w.setPending(code)
}

func (s *serverRequest) Header(name, value string) {
	s.w.Header().Set(name, value)
}

func (s *serverRequest) Write(p []byte) (int, error) {
	if s.ended {
		return 0, ErrResponseEnded
	}
	return s.w.Write(p)
}

func (s *serverRequest) End() error {
	if s.ended {
		return nil
	}
	s.w.WriteHeader(s.w.Status())
	s.ended = true
	return nil
}

func (s *serverRequest) JSON(v any) error {
	if s.ended {
		return ErrResponseEnded
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, err = s.w.Write(data)
	return err
}

// Go answers with a redirect. HTMX requests get an HX-Location swap into the
// mount node instead of a full reload.
func (s *serverRequest) Go(url string, opts ...GoOption) error {
	if s.ended {
		return ErrResponseEnded
	}
	cfg := newGoConfig(opts...)
	htmx.Navigate(s.w, s.r, htmx.Navigation{
		Path:    url,
		Target:  "#" + s.app.mountID,
		Replace: cfg.replace,
	})
	s.ended = true
	return nil
}

// Call invokes the procedure in process with this request's service.
func (s *serverRequest) Call(method string, args ...any) (rpc.Result, error) {
	started := time.Now()
	res, err := s.app.rpc.Call(s, s.svc, method, args...)
	s.app.observeCall(method, time.Since(started), err)
	return res, err
}

// Render writes the view as a full document, or as a fragment when HTMX only
// needs to swap the mount node.
func (s *serverRequest) Render(vpath string, attrs view.Attrs) error {
	if s.ended {
		return ErrResponseEnded
	}

	started := time.Now()
	ctx := logger.WithVPath(s, vpath)
	err := s.app.serverLoader.Load(ctx, vpath, func(m *view.Module) error {
		comp, err := view.DefaultComponent(vpath, m)
		if err != nil {
			return err
		}
		return s.writeView(ctx, m.Bundles, comp(attrs))
	})
	s.app.metrics.ObserveRender(metrics.VariantServer, time.Since(started), err)
	return err
}

func (s *serverRequest) writeView(ctx context.Context, bundles []string, body templ.Component) error {
	var page templ.Component
	if htmx.IsPartial(s.r) {
		htmx.SetTitleTrigger(s.w, s.Title())
		page = document.Fragment(s.Title(), body)
	} else {
		page = document.Page(document.Head{
			Title:   s.Title(),
			Meta:    s.documentMeta(),
			Bundles: bundles,
		}, s.app.mountID, body)
	}

	// Buffer so a failing component still leaves room for an error response.
	var buf bytes.Buffer
	if err := page.Render(ctx, &buf); err != nil {
		return err
	}

	s.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := s.w.Write(buf.Bytes())
	return err
}

func (s *serverRequest) IsBrowser() bool {
	return false
}

func routeParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if key == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}
