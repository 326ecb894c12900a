// Package isoforge dispatches the same request handlers on the server and
// in the browser.
//
// A handler is written once against [Request]. On the server it answers an
// HTTP request with a full HTML document, or with a fragment when HTMX only
// needs the mount node swapped. In the browser the [Browser] navigation
// controller runs the very same route table and mounts the view into the
// live document instead.
//
// # Quick Start
//
//	views := view.NewRegistry()
//	views.Static("contacts/list", pages.ContactList, "/static/app.css")
//
//	app := isoforge.New(
//	    isoforge.WithTitle("Contacts"),
//	    isoforge.WithViews(views),
//	    isoforge.WithHandlers(handlers.NewContacts(repo)),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Handlers
//
//	func (h *Contacts) Routes(r isoforge.Router) {
//	    r.GET("/contacts", h.list)
//	    r.GET("/contacts/{id}", h.show)
//	}
//
//	func (h *Contacts) show(r isoforge.Request) error {
//	    res, err := r.Call("contacts.get", r.Param("id"))
//	    if err != nil {
//	        return err
//	    }
//	    var c Contact
//	    if err := res.Decode(&c); err != nil {
//	        return err
//	    }
//	    r.SetTitle(c.Name)
//	    return r.Render("contacts/show", isoforge.Attrs{"contact": c})
//	}
//
// # Authorization
//
// [Request.Authorize] evaluates a [Predicate] against the session the request
// borrowed. A denial is [ErrNotAuthorized]: a 403 on the server and the error
// page in the browser. Remote procedures receive the same gate through their
// service argument.
//
// # Remote procedures
//
// Procedures registered with [WithRPC] are served over JSON-RPC 2.0 at
// [DefaultRPCPath]. Server requests invoke them in process; a Browser either
// does the same or, with [WithRemote], goes over the wire.
//
// # Configuration
//
// [LoadConfig] reads a [Config] from the environment; its methods turn it into
// options, a Sentry-aware logger and a session store.
package isoforge
