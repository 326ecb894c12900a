package internal_test

import (
	"context"
	"errors"
	"io"
	"net/url"
	"sync"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/isoforge/internal"
	"github.com/dmitrymomot/isoforge/pkg/document"
	"github.com/dmitrymomot/isoforge/pkg/meta"
	"github.com/dmitrymomot/isoforge/pkg/rpc"
	"github.com/dmitrymomot/isoforge/pkg/view"
)

// journal records the order in which collaborators are touched.
type journal struct {
	ops []string
	mu  sync.Mutex
}

func (j *journal) add(op string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ops = append(j.ops, op)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.ops...)
}

type fakeNav struct {
	journal *journal
	result  rpc.Result
	callErr error
	current string
	calls   []string
	errs    []error
	mu      sync.Mutex
}

func (n *fakeNav) Go(_ context.Context, url string, _ ...internal.GoOption) error {
	n.journal.add("go " + url)
	return nil
}

func (n *fakeNav) Call(_ context.Context, method string, _ ...any) (rpc.Result, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, method)
	return n.result, n.callErr
}

func (n *fakeNav) CurrentVPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *fakeNav) SetCurrentVPath(vpath string) {
	n.journal.add("marker " + vpath)
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = vpath
}

func (n *fakeNav) RenderUnhandledErrorPage(_ context.Context, err error) {
	n.journal.add("error page")
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs = append(n.errs, err)
}

type journalMounter struct {
	journal *journal
	inner   document.TemplMounter
}

func (m journalMounter) Mount(ctx context.Context, c templ.Component, node document.Node) error {
	m.journal.add("mount")
	return m.inner.Mount(ctx, c, node)
}

func (m journalMounter) Unmount(ctx context.Context, node document.Node) error {
	m.journal.add("unmount")
	return m.inner.Unmount(ctx, node)
}

type harness struct {
	journal *journal
	nav     *fakeNav
	doc     *document.Headless
	views   *view.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	j := &journal{}
	views := view.NewRegistry()
	views.Static("a", func(attrs view.Attrs) templ.Component {
		return templ.Raw("<p>view a " + attrs.String("name") + "</p>")
	})
	views.Static("b", func(view.Attrs) templ.Component {
		return templ.Raw("<p>view b</p>")
	})
	views.Register("broken", func(context.Context) (*view.Module, error) {
		return &view.Module{}, nil
	})

	return &harness{
		journal: j,
		nav:     &fakeNav{journal: j},
		doc:     document.NewHeadless(""),
		views:   views,
	}
}

func (h *harness) request(t *testing.T, rawURL string, defaults internal.Defaults) *internal.BrowserRequest {
	t.Helper()

	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return internal.NewBrowserRequest(context.Background(), internal.BrowserRequestConfig{
		Nav:      h.nav,
		Document: h.doc,
		Mounter:  journalMounter{journal: h.journal},
		Loader:   view.NewSerial(h.views),
		URL:      u,
		Defaults: defaults,
	})
}

func TestBrowserRequest_Title(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	defaults := internal.Defaults{Title: "App", Description: "An app"}

	t.Run("falls back to the default", func(t *testing.T) {
		t.Parallel()
		req := h.request(t, "/", defaults)
		assert.Equal(t, "App", req.Title())
		assert.Equal(t, "An app", req.Description())
	})

	t.Run("override shadows the default", func(t *testing.T) {
		t.Parallel()
		req := h.request(t, "/", defaults)
		req.SetTitle("Inbox")
		req.SetDescription("Messages")
		assert.Equal(t, "Inbox", req.Title())
		assert.Equal(t, "Messages", req.Description())
	})

	t.Run("empty override falls back again", func(t *testing.T) {
		t.Parallel()
		req := h.request(t, "/", defaults)
		req.SetTitle("Inbox")
		req.SetTitle("")
		assert.Equal(t, "App", req.Title())
	})

	t.Run("override round-trips verbatim", func(t *testing.T) {
		t.Parallel()
		req := h.request(t, "/", defaults)
		req.SetTitle("Vector<T> docs")
		req.SetDescription("&lt;b&gt; is bold")
		assert.Equal(t, "Vector<T> docs", req.Title())
		assert.Equal(t, "&lt;b&gt; is bold", req.Description())
	})
}

func TestBrowserRequest_Meta(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	defaults := internal.Defaults{Meta: meta.Set{
		"robots":   {Name: "robots", Content: "index"},
		"viewport": {Name: "viewport", Content: "width=device-width"},
	}}

	t.Run("request tag overrides application tag", func(t *testing.T) {
		t.Parallel()
		req := h.request(t, "/", defaults)
		require.NoError(t, req.Meta(meta.Tag{Name: "robots", Content: "noindex"}))

		got := req.GetMeta()
		assert.Equal(t, "noindex", got["robots"].Content)
		assert.Equal(t, "width=device-width", got["viewport"].Content)
		assert.Equal(t, "index", defaults.Meta["robots"].Content)
	})

	t.Run("tag without identifier is rejected", func(t *testing.T) {
		t.Parallel()
		req := h.request(t, "/", defaults)
		assert.ErrorIs(t, req.Meta(meta.Tag{Content: "x"}), meta.ErrInvalidTag)
	})

	t.Run("tag with both identifiers is rejected", func(t *testing.T) {
		t.Parallel()
		req := h.request(t, "/", defaults)
		err := req.Meta(meta.Tag{Name: "a", HTTPEquiv: "refresh", Content: "x"})
		assert.ErrorIs(t, err, meta.ErrInvalidTag)
	})

	t.Run("invalid batch stores nothing", func(t *testing.T) {
		t.Parallel()
		req := h.request(t, "/", defaults)
		err := req.Meta(meta.Tag{Name: "author", Content: "me"}, meta.Tag{Content: "bad"})
		require.ErrorIs(t, err, meta.ErrInvalidTag)

		_, ok := req.GetMeta().Get("author")
		assert.False(t, ok)
	})

	t.Run("http-equiv tags are keyed by http-equiv", func(t *testing.T) {
		t.Parallel()
		req := h.request(t, "/", defaults)
		require.NoError(t, req.Meta(meta.Tag{HTTPEquiv: "refresh", Content: "30"}))

		tag, ok := req.GetMeta().Get("refresh")
		require.True(t, ok)
		assert.Equal(t, "30", tag.Content)
	})
}

func TestBrowserRequest_ResponseOperations(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	req := h.request(t, "/inbox?page=2#msg-7", internal.Defaults{})

	assert.Equal(t, "GET", req.Method())
	assert.Equal(t, "msg-7", req.Hash())
	assert.Equal(t, "2", req.Query().Get("page"))
	assert.True(t, req.IsBrowser())

	req.SetStatus(500)
	assert.Equal(t, 200, req.Status())

	req.Header("X-Ignored", "1")
	n, err := req.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.NoError(t, req.End())
	require.NoError(t, req.JSON(map[string]int{"a": 1}))

	_, err = req.Write([]byte("after end"))
	assert.NoError(t, err)
}

func TestBrowserRequest_GoAndCall(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.nav.result = rpc.Result(`42`)
	req := h.request(t, "/", internal.Defaults{})

	require.NoError(t, req.Go("/next", internal.Replace()))
	assert.Equal(t, []string{"go /next"}, h.journal.list())

	res, err := req.Call("math.answer")
	require.NoError(t, err)
	var n int
	require.NoError(t, res.Decode(&n))
	assert.Equal(t, 42, n)

	h.nav.callErr = &rpc.Error{Code: rpc.CodeInternal, Message: "boom"}
	_, err = req.Call("math.answer")
	var rpcErr *rpc.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "boom", rpcErr.Message)
}

func TestBrowserRequest_Render(t *testing.T) {
	t.Parallel()

	t.Run("syncs head then mounts and moves marker", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		req := h.request(t, "/", internal.Defaults{Title: "App", Description: "Default description"})
		req.SetTitle("Page A")

		require.NoError(t, req.Render("a", view.Attrs{"name": "alice"}))

		assert.Equal(t, "Page A", h.doc.Title())
		desc, ok := h.doc.Meta().Get("description")
		require.True(t, ok)
		assert.Equal(t, "Default description", desc.Content)
		assert.Equal(t, "<p>view a alice</p>", h.doc.Body().HTML())
		assert.Equal(t, "a", h.nav.CurrentVPath())
		assert.Equal(t, []string{"unmount", "mount", "marker a"}, h.journal.list())
	})

	t.Run("explicit description tag wins over description", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		req := h.request(t, "/", internal.Defaults{Description: "Default description"})
		require.NoError(t, req.Meta(meta.Tag{Name: "description", Content: "Tagged"}))

		require.NoError(t, req.Render("a", nil))

		desc, _ := h.doc.Meta().Get("description")
		assert.Equal(t, "Tagged", desc.Content)
	})

	t.Run("switching views unmounts before mounting", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		require.NoError(t, h.request(t, "/a", internal.Defaults{}).Render("a", nil))
		require.NoError(t, h.request(t, "/b", internal.Defaults{}).Render("b", nil))

		assert.Equal(t, []string{
			"unmount", "mount", "marker a",
			"unmount", "mount", "marker b",
		}, h.journal.list())
		assert.Equal(t, "b", h.nav.CurrentVPath())
		assert.Equal(t, "<p>view b</p>", h.doc.Body().HTML())
	})

	t.Run("same view is re-mounted without unmount", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		require.NoError(t, h.request(t, "/a", internal.Defaults{}).Render("a", view.Attrs{"name": "one"}))
		require.NoError(t, h.request(t, "/a", internal.Defaults{}).Render("a", view.Attrs{"name": "two"}))

		assert.Equal(t, []string{
			"unmount", "mount", "marker a",
			"mount", "marker a",
		}, h.journal.list())
		assert.Equal(t, "<p>view a two</p>", h.doc.Body().HTML())
	})

	t.Run("unknown module goes to the error page once", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		require.NoError(t, h.request(t, "/a", internal.Defaults{}).Render("a", nil))

		err := h.request(t, "/missing", internal.Defaults{}).Render("missing", nil)
		require.NoError(t, err)

		require.Len(t, h.nav.errs, 1)
		assert.ErrorIs(t, h.nav.errs[0], view.ErrModuleNotFound)
		assert.Equal(t, "a", h.nav.CurrentVPath())
		assert.Equal(t, []string{"unmount", "mount", "marker a", "error page"}, h.journal.list())
	})

	t.Run("module without default component is a configuration error", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		require.NoError(t, h.request(t, "/broken", internal.Defaults{}).Render("broken", nil))

		require.Len(t, h.nav.errs, 1)
		var cfgErr *view.ConfigError
		require.ErrorAs(t, h.nav.errs[0], &cfgErr)
		assert.Equal(t, "broken", cfgErr.VPath)
		assert.ErrorIs(t, h.nav.errs[0], view.ErrNoDefaultExport)
		assert.Empty(t, h.nav.CurrentVPath())
	})

	t.Run("mount failure keeps the marker", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.views.Static("failing", func(view.Attrs) templ.Component {
			return templ.ComponentFunc(func(context.Context, io.Writer) error {
				return errors.New("component exploded")
			})
		})

		require.NoError(t, h.request(t, "/failing", internal.Defaults{}).Render("failing", nil))

		require.Len(t, h.nav.errs, 1)
		assert.EqualError(t, h.nav.errs[0], "component exploded")
		assert.Empty(t, h.nav.CurrentVPath())
	})
}
