package contacts

import (
	"github.com/dmitrymomot/isoforge"
	"github.com/dmitrymomot/isoforge/middlewares"
	"github.com/dmitrymomot/isoforge/pkg/meta"
)

// Handler serves the contact pages.
type Handler struct {
	app func() *isoforge.App
}

// NewHandler creates the page handler. app is resolved lazily because the
// app is built from the handler.
func NewHandler(app func() *isoforge.App) *Handler {
	return &Handler{app: app}
}

func (h *Handler) Routes(r isoforge.Router) {
	r.GET("/", h.home)
	r.GET("/contacts", h.list)
	r.GET("/contacts/{id}", h.show)
	r.GET("/contacts/new", h.form, middlewares.RequireAuth(CanEdit))
	r.POST("/login", h.login)
	r.POST("/logout", h.logout)
}

func (h *Handler) home(r isoforge.Request) error {
	return r.Go("/contacts", isoforge.Replace())
}

func (h *Handler) list(r isoforge.Request) error {
	res, err := r.Call("contacts.list")
	if err != nil {
		return err
	}
	var list []Contact
	if err := res.Decode(&list); err != nil {
		return err
	}
	r.SetTitle("Contacts")
	return r.Render("contacts/list", isoforge.Attrs{"contacts": list})
}

func (h *Handler) show(r isoforge.Request) error {
	res, err := r.Call("contacts.get", r.Param("id"))
	if err != nil {
		return err
	}
	var c Contact
	if err := res.Decode(&c); err != nil {
		return err
	}
	r.SetTitle(c.Name)
	r.SetDescription(meta.Sanitize("Contact details for " + c.Name))
	if err := r.Meta(meta.Tag{Name: "robots", Content: "noindex"}); err != nil {
		return err
	}
	return r.Render("contacts/show", isoforge.Attrs{"contact": c})
}

func (h *Handler) form(r isoforge.Request) error {
	r.SetTitle("New contact")
	return r.Render("contacts/new", nil)
}

// login signs in a demo editor. Only server requests can set the cookie.
func (h *Handler) login(r isoforge.Request) error {
	if _, err := h.app().Sessions().Login(r, "demo", "editor"); err != nil {
		return err
	}
	return r.Go("/contacts", isoforge.Replace())
}

func (h *Handler) logout(r isoforge.Request) error {
	if err := h.app().Sessions().Logout(r); err != nil {
		return err
	}
	return r.Go("/contacts")
}
