// Package middlewares provides middleware for isoforge applications.
//
// Every middleware here is written against isoforge.Request, so it runs for
// server requests and client-side navigations alike.
//
// # Request ID
//
// RequestID tags each request with an ID taken from the first matching
// incoming header, or generated as a UUIDv7. Pair it with
// RequestIDExtractor to add request_id to every log record:
//
//	app := isoforge.New(
//	    isoforge.WithLogger("web", middlewares.RequestIDExtractor()),
//	    isoforge.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover turns a panic into a *PanicError, which the error handler renders
// like any other 500.
//
// # Authorization
//
// RequireAuth runs the authorization gate before the handler. A denial
// surfaces as service.ErrNotAuthorized, which becomes a 403 on the server
// and the error page in the browser:
//
//	r.GET("/admin", h.dashboard, middlewares.RequireRole("admin"))
//
// # Recommended order
//
//	isoforge.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.Recover(),
//	)
package middlewares
