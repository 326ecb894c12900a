package document

import (
	"bytes"
	"context"
	"sync"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/isoforge/pkg/meta"
)

// DefaultMountID is the id of the element views are mounted into.
const DefaultMountID = "app"

// Node is the single element a view tree is attached to.
type Node interface {
	ID() string
	Replace(html []byte)
	Clear()
}

// Document is the host page as seen by the render lifecycle.
type Document interface {
	SetTitle(title string)
	SetMeta(tags meta.Set)
	MountNode() Node
}

// Mounter attaches and detaches component trees.
type Mounter interface {
	Mount(ctx context.Context, c templ.Component, node Node) error
	Unmount(ctx context.Context, node Node) error
}

// Element is an in-memory mount node.
type Element struct {
	id      string
	html    []byte
	mu      sync.RWMutex
	mounted bool
}

func (e *Element) ID() string { return e.id }

func (e *Element) Replace(html []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.html = bytes.Clone(html)
	e.mounted = true
}

func (e *Element) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.html = nil
	e.mounted = false
}

// HTML returns the markup currently attached.
func (e *Element) HTML() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return string(e.html)
}

// Mounted reports whether a tree is attached.
func (e *Element) Mounted() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mounted
}

// Headless is an in-memory Document.
type Headless struct {
	meta  meta.Set
	body  *Element
	title string
	mu    sync.RWMutex
}

// NewHeadless creates a document whose body holds one mount node.
// An empty mountID falls back to DefaultMountID.
func NewHeadless(mountID string) *Headless {
	if mountID == "" {
		mountID = DefaultMountID
	}
	return &Headless{body: &Element{id: mountID}, meta: meta.Set{}}
}

func (d *Headless) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.title = title
}

func (d *Headless) SetMeta(tags meta.Set) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.meta = tags.Clone()
}

func (d *Headless) MountNode() Node {
	return d.body
}

// Title returns the current document title.
func (d *Headless) Title() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.title
}

// Meta returns a copy of the current head tags.
func (d *Headless) Meta() meta.Set {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.meta.Clone()
}

// Body returns the mount node.
func (d *Headless) Body() *Element {
	return d.body
}

// Snapshot renders the whole document as HTML.
func (d *Headless) Snapshot(ctx context.Context) (string, error) {
	d.mu.RLock()
	head := Head{Title: d.title, Meta: d.meta.Clone()}
	d.mu.RUnlock()

	var buf bytes.Buffer
	body := templ.Raw(d.body.HTML())
	if err := Page(head, d.body.ID(), body).Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TemplMounter renders templ components into a node.
type TemplMounter struct{}

// Mount renders c and replaces the node's content with the result.
// The node is left untouched when rendering fails.
func (TemplMounter) Mount(ctx context.Context, c templ.Component, node Node) error {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return err
	}
	node.Replace(buf.Bytes())
	return nil
}

func (TemplMounter) Unmount(_ context.Context, node Node) error {
	node.Clear()
	return nil
}
