// Package htmx speaks the HTMX header protocol on behalf of server-side requests.
//
// Links and forms in server-rendered pages are boosted by HTMX, so a
// navigation coming from an already loaded page only needs the view markup,
// not a whole document. IsPartial tells the two apart, and Navigate turns a
// handler's Go call into either an HX-Location instruction or a plain HTTP
// redirect:
//
//	if htmx.IsPartial(r) {
//	    // render only the view fragment
//	}
//	htmx.Navigate(w, r, htmx.Navigation{Path: "/inbox", Target: "#app", Replace: true})
package htmx
