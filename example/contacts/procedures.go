package contacts

import (
	"context"
	"errors"

	"github.com/dmitrymomot/isoforge"
	"github.com/dmitrymomot/isoforge/pkg/rpc"
	"github.com/dmitrymomot/isoforge/pkg/service"
	"github.com/dmitrymomot/isoforge/pkg/session"
)

// CanEdit admits sessions with the editor role.
var CanEdit = isoforge.Check(func(_ context.Context, _ *service.Service, sess *session.Session) (bool, error) {
	return sess.HasRole("editor"), nil
})

// Register exposes the repo under the "contacts" namespace.
func Register(reg *rpc.Registry, repo *Repo) {
	ns := reg.Namespace("contacts")

	ns.Register("list", func(ctx context.Context, _ *service.Service, _ rpc.Params) (any, error) {
		return repo.List(ctx), nil
	})

	ns.Register("get", func(ctx context.Context, _ *service.Service, p rpc.Params) (any, error) {
		var id string
		if err := p.Bind(&id); err != nil {
			return nil, err
		}
		c, err := repo.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return nil, isoforge.ErrNotFound("Contact not found", isoforge.WithCause(err))
		}
		return c, err
	})

	ns.Register("create", func(ctx context.Context, svc *service.Service, p rpc.Params) (any, error) {
		if err := svc.Authorize(ctx, CanEdit); err != nil {
			return nil, err
		}
		var name, email string
		if err := p.Bind(&name, &email); err != nil {
			return nil, err
		}
		return repo.Create(ctx, name, email)
	})

	ns.Register("delete", func(ctx context.Context, svc *service.Service, p rpc.Params) (any, error) {
		if err := svc.Authorize(ctx, CanEdit); err != nil {
			return nil, err
		}
		var id string
		if err := p.Bind(&id); err != nil {
			return nil, err
		}
		return nil, repo.Delete(ctx, id)
	})
}
