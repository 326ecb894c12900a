// Package service binds a session and a logger into a per-operation scope and
// exposes the authorization gate application services use to guard their
// operations.
//
// A Service is created once per logical unit of work (an HTTP request, an RPC
// call) and discarded afterwards:
//
//	svc := service.New(sess, logger)
//
//	if err := svc.Authorize(ctx, service.Allow(sess.IsAuthenticated())); err != nil {
//	    return err
//	}
//
// Predicates that need more than a literal boolean use Check. The callback
// runs exactly once, receives the Service and its Session, and may block:
//
//	err := svc.Authorize(ctx, service.Check(func(ctx context.Context, s *service.Service, sess *session.Session) (bool, error) {
//	    return repo.IsOwner(ctx, sess.User(), docID)
//	}))
//
// # Errors
//
// A predicate resolving to false yields ErrNotAuthorized. A callback that fails
// (returns an error or panics) yields an error wrapping ErrCheckFailed instead,
// so callers can tell "denied" apart from "could not decide":
//
//	switch {
//	case errors.Is(err, service.ErrNotAuthorized):
//	    // render 403
//	case errors.Is(err, service.ErrCheckFailed):
//	    // render 500
//	}
//
// The gate itself never logs, caches or retries.
package service
