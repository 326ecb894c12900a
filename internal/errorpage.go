package internal

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

const errorPageTitle = "Error"

// ErrorView renders the page shown for unhandled errors.
type ErrorView func(err *HTTPError) templ.Component

// DefaultErrorView shows the status and the user-facing message.
// The underlying error is never exposed.
func DefaultErrorView(err *HTTPError) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		title := err.Title
		if title == "" {
			title = err.StatusText()
		}
		_, werr := io.WriteString(w, `<section class="error" data-status="`+strconv.Itoa(err.Code)+`">`+
			`<h1>`+templ.EscapeString(title)+`</h1>`+
			`<p>`+templ.EscapeString(err.Message)+`</p>`)
		if werr != nil {
			return werr
		}
		if err.Detail != "" {
			if _, werr = io.WriteString(w, `<p class="detail">`+templ.EscapeString(err.Detail)+`</p>`); werr != nil {
				return werr
			}
		}
		_, werr = io.WriteString(w, `</section>`)
		return werr
	})
}
