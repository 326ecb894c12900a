package htmx

import "net/http"

// IsHTMX reports whether the request was issued by HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderHXRequest) == "true"
}

// IsHistoryRestore reports whether HTMX is restoring a page missing from its
// history cache. Such requests expect a full document.
func IsHistoryRestore(r *http.Request) bool {
	return r.Header.Get(HeaderHXHistoryRestoreRequest) == "true"
}

// IsPartial reports whether a fragment response is enough for the request.
func IsPartial(r *http.Request) bool {
	return IsHTMX(r) && !IsHistoryRestore(r)
}
