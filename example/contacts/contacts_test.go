package contacts_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/isoforge"
	"github.com/dmitrymomot/isoforge/example/contacts"
	"github.com/dmitrymomot/isoforge/example/views"
	"github.com/dmitrymomot/isoforge/pkg/document"
	"github.com/dmitrymomot/isoforge/pkg/rpc"
	"github.com/dmitrymomot/isoforge/pkg/session"
)

func newApp(t *testing.T) (*isoforge.App, *contacts.Repo) {
	t.Helper()

	repo := contacts.NewRepo(contacts.Contact{Name: "Ada Lovelace", Email: "ADA@example.com "})
	procs := rpc.NewRegistry()
	contacts.Register(procs, repo)

	var app *isoforge.App
	app = isoforge.New(
		isoforge.WithTitle("Contacts"),
		isoforge.WithViews(views.Registry()),
		isoforge.WithRPC(procs),
		isoforge.WithSessionStore(session.NewMemoryStore()),
		isoforge.WithHandlers(contacts.NewHandler(func() *isoforge.App { return app })),
	)
	return app, repo
}

func TestPages_Server(t *testing.T) {
	t.Parallel()

	app, repo := newApp(t)
	ada := repo.List(context.Background())[0]
	assert.Equal(t, "ada@example.com", ada.Email)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contacts/"+ada.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Ada Lovelace</title>")
	assert.Contains(t, rec.Body.String(), `<meta name="robots" content="noindex">`)

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contacts/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contacts/new", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPages_Browser(t *testing.T) {
	t.Parallel()

	app, _ := newApp(t)
	doc := document.NewHeadless("")
	b := app.NewBrowser(isoforge.WithDocument(doc))

	require.NoError(t, b.Start(context.Background(), "/"))
	assert.Equal(t, "/contacts", b.Location().Path)
	assert.Equal(t, "Contacts", doc.Title())
	assert.Contains(t, doc.Body().HTML(), "Ada Lovelace")

	editor := session.New("s", "t", time.Now().Add(time.Hour))
	uid := "demo"
	editor.UserID = &uid
	editor.Roles = []string{"editor"}

	b = app.NewBrowser(isoforge.WithDocument(doc), isoforge.WithBrowserSession(editor))
	require.NoError(t, b.Start(context.Background(), "/contacts/new"))
	assert.Contains(t, doc.Body().HTML(), `data-rpc="contacts.create"`)

	res, err := b.Call(context.Background(), "contacts.create", "Grace Hopper", "grace@example.com")
	require.NoError(t, err)
	var created contacts.Contact
	require.NoError(t, res.Decode(&created))
	assert.NotEmpty(t, created.ID)
}

func TestProcedures_RequireEditor(t *testing.T) {
	t.Parallel()

	app, _ := newApp(t)
	b := app.NewBrowser()

	_, err := b.Call(context.Background(), "contacts.create", "Eve", "eve@example.com")
	assert.ErrorIs(t, err, isoforge.ErrNotAuthorized)
}
