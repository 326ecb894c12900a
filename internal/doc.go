// Package internal provides the core types and implementation for isoforge.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/isoforge" instead, which re-exports the public API.
//
// # One contract, two variants
//
// Handlers are written against Request. On the server a Request wraps an
// HTTP exchange: Render writes a full document (or an HTMX fragment), Go
// answers with a redirect and Call invokes the remote procedure registry in
// process. In the browser the Browser navigation controller dispatches a
// BrowserRequest through the very same router: Render mounts the view into
// the host document, Go pushes a history entry and Call goes through the
// browser's caller, which is a JSON-RPC client when WithRemote is set.
// Response-shaped operations (Status, Header, Write, End) are
// no-ops there.
//
//	func (h *Contacts) show(r isoforge.Request) error {
//	    c, err := h.repo.Get(r, r.Param("id"))
//	    if err != nil {
//	        return err
//	    }
//	    r.SetTitle(c.Name)
//	    return r.Render("contacts/show", view.Attrs{"contact": c})
//	}
//
// # Request as context.Context
//
// Request embeds context.Context, so it can be passed to any function
// expecting a standard library context.
//
// # Page head
//
// Title, description and meta tags resolve in two levels: the application
// defaults set with WithTitle, WithDescription and WithMeta, shadowed by the
// request's own overrides. An empty override falls back to the default.
//
// # Browser rendering
//
// BrowserRequest.Render loads the module through the browser's loader,
// syncs the document head, unmounts the previous view when the virtual path
// changed, mounts the new one and only then moves the current-view marker.
// Failures never escape Render: they are shown on the unhandled error page.
//
// # Errors
//
// Handler errors go to the ErrorHandler set with WithErrorHandler. The
// default maps service.ErrNotAuthorized to 403, *HTTPError to its code and
// view.ErrModuleNotFound to 404; everything else is a 500.
package internal
