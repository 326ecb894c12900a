package internal

// Handler declares routes on a router.
//
// Example:
//
//	type ContactsHandler struct {
//	    repo *contacts.Repo
//	}
//
//	func (h *ContactsHandler) Routes(r isoforge.Router) {
//	    r.GET("/contacts", h.list)
//	    r.GET("/contacts/{id}", h.show)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// The same handler serves server requests and client-side navigations;
// Request hides which one is running.
// Returning a non-nil error triggers the error handler.
type HandlerFunc func(r Request) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
//
// Example:
//
//	func Audit(next isoforge.HandlerFunc) isoforge.HandlerFunc {
//	    return func(r isoforge.Request) error {
//	        r.Log("visit", "path", r.URL().Path)
//	        return next(r)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(r Request, err error) error
