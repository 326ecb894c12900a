package document

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/isoforge/pkg/meta"
)

// Head is the resolved page head.
type Head struct {
	Meta    meta.Set
	Title   string
	Bundles []string
}

// Page renders a complete HTML document with body mounted under mountID.
func Page(head Head, mountID string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		sw := &stickyWriter{w: w}
		sw.write(`<!DOCTYPE html><html><head><meta charset="utf-8">`)
		sw.write(`<title>`, templ.EscapeString(head.Title), `</title>`)
		writeTags(sw, head.Meta)
		writeBundles(sw, head.Bundles)
		sw.write(`</head><body><div id="`, templ.EscapeString(mountID), `">`)
		if sw.err != nil {
			return sw.err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		sw.write(`</div></body></html>`)
		return sw.err
	})
}

// Fragment renders the title followed by body, for partial page swaps.
func Fragment(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<title>"+templ.EscapeString(title)+"</title>"); err != nil {
			return err
		}
		if body == nil {
			return nil
		}
		return body.Render(ctx, w)
	})
}

func writeTags(sw *stickyWriter, tags meta.Set) {
	for _, t := range tags.Sorted() {
		attr, key := "name", t.Name
		if key == "" {
			attr, key = "http-equiv", t.HTTPEquiv
		}
		sw.write(`<meta `, attr, `="`, templ.EscapeString(key), `" content="`, templ.EscapeString(t.Content), `">`)
	}
}

func writeBundles(sw *stickyWriter, bundles []string) {
	for _, b := range bundles {
		src := templ.EscapeString(b)
		switch {
		case strings.HasSuffix(b, ".css"):
			sw.write(`<link rel="stylesheet" href="`, src, `">`)
		case strings.HasSuffix(b, ".js"):
			sw.write(`<script defer src="`, src, `"></script>`)
		}
	}
}

// stickyWriter remembers the first write error and skips later writes.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) write(parts ...string) {
	for _, p := range parts {
		if s.err != nil {
			return
		}
		_, s.err = io.WriteString(s.w, p)
	}
}
