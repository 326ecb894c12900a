// Package views holds the demo view components.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/isoforge/example/contacts"
	"github.com/dmitrymomot/isoforge/pkg/view"
)

// Registry returns the demo views keyed by virtual path.
func Registry() *view.Registry {
	reg := view.NewRegistry()
	reg.Static("contacts/list", List, "/static/app.css")
	reg.Static("contacts/show", Show, "/static/app.css")
	reg.Register("contacts/new", func(context.Context) (*view.Module, error) {
		return &view.Module{Default: New, Bundles: []string{"/static/app.css", "/static/form.js"}}, nil
	})
	return reg
}

func esc(s string) string {
	return templ.EscapeString(s)
}

// List renders the contact list.
func List(attrs view.Attrs) templ.Component {
	list, _ := attrs["contacts"].([]contacts.Contact)
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Contacts</h1><ul class="contacts">`); err != nil {
			return err
		}
		for _, c := range list {
			if _, err := fmt.Fprintf(w, `<li><a href="/contacts/%s" hx-get="/contacts/%s" hx-target="#app" hx-push-url="true">%s</a></li>`,
				esc(c.ID), esc(c.ID), esc(c.Name)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul><a href="/contacts/new">New contact</a>`)
		return err
	})
}

// Show renders one contact.
func Show(attrs view.Attrs) templ.Component {
	c, _ := attrs["contact"].(contacts.Contact)
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<article class="contact"><h1>%s</h1><p><a href="mailto:%s">%s</a></p></article>`,
			esc(c.Name), esc(c.Email), esc(c.Email))
		return err
	})
}

// New renders the create form. The form script posts to contacts.create.
func New(view.Attrs) templ.Component {
	return templ.Raw(`<form class="contact-form" data-rpc="contacts.create">` +
		`<input name="name" required><input name="email" type="email" required>` +
		`<button type="submit">Save</button></form>`)
}
