package internal_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/isoforge/internal"
	"github.com/dmitrymomot/isoforge/pkg/document"
	"github.com/dmitrymomot/isoforge/pkg/metrics"
	"github.com/dmitrymomot/isoforge/pkg/rpc"
	"github.com/dmitrymomot/isoforge/pkg/service"
	"github.com/dmitrymomot/isoforge/pkg/session"
)

func startBrowser(t *testing.T, app *testApp, rawURL string, opts ...internal.BrowserOption) (*internal.Browser, *document.Headless) {
	t.Helper()

	doc := document.NewHeadless("")
	b := app.NewBrowser(append([]internal.BrowserOption{internal.WithDocument(doc)}, opts...)...)
	require.NoError(t, b.Start(context.Background(), rawURL))
	return b, doc
}

func adminSession() *session.Session {
	sess := session.New("s1", "t1", time.Now().Add(time.Hour))
	uid := "u1"
	sess.UserID = &uid
	sess.Roles = []string{"admin"}
	return sess
}

func TestBrowser_Start(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	b, doc := startBrowser(t, app, "/")

	assert.Equal(t, "Home", doc.Title())
	assert.Equal(t, "<h1>home</h1>", doc.Body().HTML())
	assert.Equal(t, "home", b.CurrentVPath())
	assert.Equal(t, "/", b.Location().Path)

	desc, ok := doc.Meta().Get("description")
	require.True(t, ok)
	assert.Equal(t, "Isomorphic test application", desc.Content)
}

func TestBrowser_Location(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	b := app.NewBrowser()
	assert.Nil(t, b.Location())

	require.NoError(t, b.Start(context.Background(), "/users/3?tab=info#bio"))
	loc := b.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "/users/3", loc.Path)
	assert.Equal(t, "info", loc.Query().Get("tab"))
	assert.Equal(t, "bio", loc.Fragment)

	loc.Path = "/mutated"
	assert.Equal(t, "/users/3", b.Location().Path)
}

func TestBrowser_History(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	b, doc := startBrowser(t, app, "/")
	ctx := context.Background()

	require.NoError(t, b.Go(ctx, "/users/42"))
	assert.Equal(t, "<p>user 42</p>", doc.Body().HTML())
	assert.Equal(t, "Test App", doc.Title())
	assert.Equal(t, "user", b.CurrentVPath())

	require.NoError(t, b.Back(ctx))
	assert.Equal(t, "<h1>home</h1>", doc.Body().HTML())
	assert.Equal(t, "/", b.Location().Path)

	assert.ErrorIs(t, b.Back(ctx), internal.ErrHistoryEmpty)

	require.NoError(t, b.Forward(ctx))
	assert.Equal(t, "<p>user 42</p>", doc.Body().HTML())
	assert.ErrorIs(t, b.Forward(ctx), internal.ErrHistoryEmpty)

	t.Run("navigating after back drops forward entries", func(t *testing.T) {
		require.NoError(t, b.Back(ctx))
		require.NoError(t, b.Go(ctx, "users/9"))
		assert.Equal(t, "/users/9", b.Location().Path)
		assert.ErrorIs(t, b.Forward(ctx), internal.ErrHistoryEmpty)
	})
}

func TestBrowser_HandlerRedirect(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	b, doc := startBrowser(t, app, "/users/1")
	ctx := context.Background()

	require.NoError(t, b.Go(ctx, "/old"))
	assert.Equal(t, "/", b.Location().Path)
	assert.Equal(t, "<h1>home</h1>", doc.Body().HTML())

	// The redirecting entry was replaced, so back skips it.
	require.NoError(t, b.Back(ctx))
	assert.Equal(t, "/users/1", b.Location().Path)
}

func TestBrowser_Middleware(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	_, doc := startBrowser(t, app, "/trace")

	assert.Equal(t, "<p>traced</p>", doc.Body().HTML())
}

func TestBrowser_ErrorPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		status string
	}{
		{name: "not authorized", path: "/admin", status: `data-status="403"`},
		{name: "not authorized through a call", path: "/secret", status: `data-status="403"`},
		{name: "no route", path: "/nowhere", status: `data-status="404"`},
		{name: "handler failure", path: "/boom", status: `data-status="500"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := newTestApp(t)
			b, doc := startBrowser(t, app, "/")

			require.NoError(t, b.Go(context.Background(), tt.path))

			assert.Equal(t, "Error", doc.Title())
			assert.Contains(t, doc.Body().HTML(), tt.status)
			assert.NotContains(t, doc.Body().HTML(), "password")
			assert.Equal(t, "home", b.CurrentVPath())
			assert.Equal(t, tt.path, b.Location().Path)
		})
	}
}

func TestBrowser_Session(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	b, doc := startBrowser(t, app, "/admin", internal.WithBrowserSession(adminSession()))

	assert.Equal(t, "<p>admin</p>", doc.Body().HTML())
	assert.Equal(t, "admin", b.CurrentVPath())

	require.NoError(t, b.Go(context.Background(), "/secret"))
	assert.Equal(t, "<p>admin</p>", doc.Body().HTML())
}

func TestBrowser_ResponseOperationsAreHarmless(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	b, doc := startBrowser(t, app, "/")
	ctx := context.Background()

	require.NoError(t, b.Go(ctx, "/api/ping"))
	require.NoError(t, b.Go(ctx, "/ended"))
	require.NoError(t, b.Go(ctx, "/teapot"))

	assert.Equal(t, "<p>short and stout</p>", doc.Body().HTML())
	assert.NoError(t, app.lastEndErr())
}

func TestBrowser_LoginNeedsServer(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	req := internal.NewBrowserRequest(context.Background(), internal.BrowserRequestConfig{
		Nav: app.NewBrowser(),
	})
	_, err := app.Sessions().Login(req, "u1")
	assert.ErrorIs(t, err, internal.ErrNotServerRequest)
	assert.ErrorIs(t, app.Sessions().Logout(req), internal.ErrNotServerRequest)
}

func TestBrowser_Call(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	ctx := context.Background()

	t.Run("in process", func(t *testing.T) {
		t.Parallel()
		b, doc := startBrowser(t, app, "/sum")
		assert.Equal(t, "<p>5</p>", doc.Body().HTML())

		res, err := b.Call(ctx, "math.sum", 1, 2)
		require.NoError(t, err)
		var n int
		require.NoError(t, res.Decode(&n))
		assert.Equal(t, 3, n)
	})

	t.Run("method name must be qualified", func(t *testing.T) {
		t.Parallel()
		b := app.NewBrowser()
		_, err := b.Call(ctx, "sum", 1, 2)
		assert.ErrorIs(t, err, rpc.ErrInvalidMethod)
	})

	t.Run("denied", func(t *testing.T) {
		t.Parallel()
		b := app.NewBrowser()
		_, err := b.Call(ctx, "admin.secret")
		assert.ErrorIs(t, err, service.ErrNotAuthorized)
	})

	t.Run("records metrics", func(t *testing.T) {
		t.Parallel()
		rec := metrics.New("isoforge_browser")
		b := newTestApp(t, internal.WithMetrics(rec, "")).NewBrowser()

		_, err := b.Call(ctx, "math.sum", 1, 2)
		require.NoError(t, err)
		_, err = b.Call(ctx, "nope.missing")
		require.ErrorIs(t, err, rpc.ErrMethodNotFound)

		count, err := testutil.GatherAndCount(rec.Registry(), "isoforge_browser_rpc_calls_total")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		out, err := testutil.GatherAndCount(rec.Registry(), "isoforge_browser_rpc_call_duration_seconds")
		require.NoError(t, err)
		assert.Equal(t, 2, out)
	})

	t.Run("over the wire", func(t *testing.T) {
		t.Parallel()
		srv := newRPCServer(t, app)
		b, doc := startBrowser(t, app, "/sum", internal.WithRemote(srv+internal.DefaultRPCPath))
		assert.Equal(t, "<p>5</p>", doc.Body().HTML())

		_, err := b.Call(ctx, "admin.secret")
		assert.ErrorIs(t, err, service.ErrNotAuthorized)
	})
}
