// Package meta models document metadata tags and the two-level precedence
// used to resolve a page head: application defaults, shadowed by per-request
// overrides.
package meta

import (
	"cmp"
	"errors"
	"fmt"
	"html"
	"maps"
	"slices"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// ErrInvalidTag is returned when a tag does not carry exactly one of Name or HTTPEquiv.
var ErrInvalidTag = errors.New("meta: tag requires exactly one of name or http-equiv")

// Tag is a <meta> element.
type Tag struct {
	Name      string `yaml:"name,omitempty" json:"name,omitempty"`
	HTTPEquiv string `yaml:"http_equiv,omitempty" json:"http_equiv,omitempty"`
	Content   string `yaml:"content" json:"content"`
}

// Validate checks that exactly one identifier is set.
func (t Tag) Validate() error {
	if (t.Name == "") == (t.HTTPEquiv == "") {
		return fmt.Errorf("%w: %+v", ErrInvalidTag, t)
	}
	return nil
}

// Key is the identifier the tag is stored under: Name, or HTTPEquiv.
func (t Tag) Key() string {
	if t.Name != "" {
		return t.Name
	}
	return t.HTTPEquiv
}

// Set maps tag keys to tags. The last write per key wins.
type Set map[string]Tag

// Add validates and stores tags. Nothing is stored if any tag is invalid.
func (s Set) Add(tags ...Tag) error {
	for _, t := range tags {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	for _, t := range tags {
		s[t.Key()] = t
	}
	return nil
}

// Get returns the tag stored under key.
func (s Set) Get(key string) (Tag, bool) {
	t, ok := s[key]
	return t, ok
}

// Clone returns a shallow copy safe to mutate.
func (s Set) Clone() Set {
	if s == nil {
		return Set{}
	}
	return maps.Clone(s)
}

// Sorted returns the tags ordered by key, for deterministic rendering.
func (s Set) Sorted() []Tag {
	tags := slices.Collect(maps.Values(s))
	slices.SortFunc(tags, func(a, b Tag) int { return cmp.Compare(a.Key(), b.Key()) })
	return tags
}

// Merge returns the union of base and override.
// Entries in override replace entries in base that share a key.
func Merge(base, override Set) Set {
	out := make(Set, len(base)+len(override))
	maps.Copy(out, base)
	maps.Copy(out, override)
	return out
}

// Resolve returns override when it is non-empty, fallback otherwise.
// There is no partial merge of the two values.
func Resolve(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

var (
	strictPolicy *bluemonday.Policy
	policyOnce   sync.Once
)

// Sanitize returns the plain text of s with any markup dropped.
// Head values are stored as given and escaped on output; use Sanitize for
// values derived from rich user content.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	policyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	// bluemonday escapes entities; templates escape again on output.
	return html.UnescapeString(strictPolicy.Sanitize(s))
}
