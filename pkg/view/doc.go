// Package view resolves view modules by virtual path and gates their loading.
//
// A Module is what a virtual path resolves to: one default view Component plus
// optional side-loaded bundles (stylesheets, scripts). Modules are registered
// lazily; the Registry resolves each one at most once, even under concurrent
// demand, and remembers the result.
//
//	reg := view.NewRegistry()
//	reg.Register("pages/home", func(ctx context.Context) (*view.Module, error) {
//	    return &view.Module{Default: pages.Home}, nil
//	})
//
// A Loader hands the resolved module to a callback. Serial admits one active
// load at a time, which is what the browser render lifecycle relies on to
// serialize view transitions. Direct applies no gate and is used on the
// server, where every request owns its response.
package view
