package htmx

import (
	"encoding/json"
	"net/http"
)

// Navigation describes a client-side transition to another URL.
type Navigation struct {
	Path    string `json:"path"`
	Target  string `json:"target,omitempty"`
	Swap    string `json:"swap,omitempty"`
	Select  string `json:"select,omitempty"`
	Replace bool   `json:"-"`
}

// Navigate sends the client to nav.Path.
//
// HTMX requests receive an HX-Location instruction so the target element is
// swapped without a full reload; Replace additionally sets HX-Replace-Url so
// the current history entry is overwritten. Other requests get an HTTP
// redirect: 303 when replacing, 302 otherwise.
func Navigate(w http.ResponseWriter, r *http.Request, nav Navigation) {
	if !IsHTMX(r) {
		status := http.StatusFound
		if nav.Replace {
			status = http.StatusSeeOther
		}
		http.Redirect(w, r, nav.Path, status)
		return
	}

	h := w.Header()
	if nav.Target == "" && nav.Swap == "" && nav.Select == "" {
		h.Set(HeaderHXLocation, nav.Path)
	} else if raw, err := json.Marshal(nav); err == nil {
		h.Set(HeaderHXLocation, string(raw))
	} else {
		h.Set(HeaderHXLocation, nav.Path)
	}
	if nav.Replace {
		h.Set(HeaderHXReplaceURL, nav.Path)
	}
	w.WriteHeader(http.StatusOK)
}

// Redirect forces a full page load of url. HTMX requests get HX-Redirect.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r) {
		w.Header().Set(HeaderHXRedirect, url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// SetTitleTrigger asks the client to update document.title after swapping a
// fragment. The value is read by the "isoforge:title" event listener.
func SetTitleTrigger(w http.ResponseWriter, title string) {
	raw, err := json.Marshal(map[string]string{TitleEvent: title})
	if err != nil {
		return
	}
	w.Header().Set(HeaderHXTriggerAfterSwap, string(raw))
}

// TitleEvent is the client event carrying a new document title.
const TitleEvent = "isoforge:title"
