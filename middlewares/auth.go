package middlewares

import (
	"context"

	"github.com/dmitrymomot/isoforge/internal"
	"github.com/dmitrymomot/isoforge/pkg/service"
	"github.com/dmitrymomot/isoforge/pkg/session"
)

// RequireAuth runs the authorization gate with p before the handler.
func RequireAuth(p service.Predicate) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(r internal.Request) error {
			if err := r.Authorize(p); err != nil {
				return err
			}
			return next(r)
		}
	}
}

// RequireLogin admits authenticated sessions only.
func RequireLogin() internal.Middleware {
	return RequireAuth(service.Check(func(_ context.Context, _ *service.Service, sess *session.Session) (bool, error) {
		return sess.IsAuthenticated(), nil
	}))
}

// RequireRole admits authenticated sessions holding role.
func RequireRole(role string) internal.Middleware {
	return RequireAuth(service.Check(func(_ context.Context, _ *service.Service, sess *session.Session) (bool, error) {
		return sess.IsAuthenticated() && sess.HasRole(role), nil
	}))
}
