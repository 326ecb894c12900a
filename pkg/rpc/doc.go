// Package rpc bridges remote procedure calls across the client/server boundary.
//
// Methods are registered under namespace-qualified names ("contacts.list") and
// receive their positional arguments as raw JSON. Every call runs with a
// per-call *service.Service so methods can guard themselves with the
// authorization gate:
//
//	reg := rpc.NewRegistry()
//	reg.Register("contacts.rename", func(ctx context.Context, svc *service.Service, p rpc.Params) (any, error) {
//	    var id, name string
//	    if err := p.Bind(&id, &name); err != nil {
//	        return nil, err
//	    }
//	    if err := svc.Authorize(ctx, service.Allow(svc.Session().IsAuthenticated())); err != nil {
//	        return nil, err
//	    }
//	    return repo.Rename(ctx, id, name)
//	})
//
// On the server the registry is invoked in process. In the browser the same
// call travels as a JSON-RPC 2.0 request to the Handler mounted by the app.
// Both paths encode arguments the same way and both report failures as
// *Error values; a call never resolves to a silent zero value.
//
// A method that fails the authorization gate is reported with
// CodeNotAuthorized and still satisfies errors.Is(err, service.ErrNotAuthorized)
// on the calling side.
package rpc
