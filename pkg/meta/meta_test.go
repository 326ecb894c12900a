package meta_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/isoforge/pkg/meta"
)

func TestTag_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tag     meta.Tag
		wantErr bool
	}{
		{"name only", meta.Tag{Name: "a", Content: "x"}, false},
		{"http-equiv only", meta.Tag{HTTPEquiv: "refresh", Content: "5"}, false},
		{"neither", meta.Tag{Content: "x"}, true},
		{"both", meta.Tag{Name: "a", HTTPEquiv: "b", Content: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.tag.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, meta.ErrInvalidTag)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSet_Add(t *testing.T) {
	t.Parallel()

	t.Run("last write per key wins", func(t *testing.T) {
		t.Parallel()

		s := meta.Set{}
		require.NoError(t, s.Add(meta.Tag{Name: "a", Content: "1"}))
		require.NoError(t, s.Add(meta.Tag{Name: "a", Content: "2"}))

		tag, ok := s.Get("a")
		require.True(t, ok)
		require.Equal(t, "2", tag.Content)
		require.Len(t, s, 1)
	})

	t.Run("rejects batch with invalid tag", func(t *testing.T) {
		t.Parallel()

		s := meta.Set{}
		err := s.Add(meta.Tag{Name: "ok", Content: "1"}, meta.Tag{Content: "x"})
		require.ErrorIs(t, err, meta.ErrInvalidTag)
		require.Empty(t, s)
	})

	t.Run("stores content verbatim", func(t *testing.T) {
		t.Parallel()

		s := meta.Set{}
		require.NoError(t, s.Add(meta.Tag{Name: "a", Content: `Vector<T> & &lt;b&gt;`}))
		require.Equal(t, `Vector<T> & &lt;b&gt;`, s["a"].Content)
	})
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", meta.Sanitize(""))
	require.Equal(t, "Tom & Jerry", meta.Sanitize(`Tom & <b>Jerry</b><script>x()</script>`))
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := meta.Set{
		"a":      {Name: "a", Content: "app"},
		"robots": {Name: "robots", Content: "index"},
	}
	override := meta.Set{
		"a":       {Name: "a", Content: "request"},
		"refresh": {HTTPEquiv: "refresh", Content: "30"},
	}

	got := meta.Merge(base, override)

	require.Len(t, got, 3)
	require.Equal(t, "request", got["a"].Content)
	require.Equal(t, "index", got["robots"].Content)
	require.Equal(t, "30", got["refresh"].Content)
	require.Equal(t, "app", base["a"].Content, "base must not be mutated")
}

func TestResolve(t *testing.T) {
	t.Parallel()

	require.Equal(t, "X", meta.Resolve("X", "Default"))
	require.Equal(t, "Default", meta.Resolve("", "Default"))
}

func TestSet_Sorted(t *testing.T) {
	t.Parallel()

	s := meta.Set{}
	require.NoError(t, s.Add(
		meta.Tag{Name: "viewport", Content: "v"},
		meta.Tag{Name: "author", Content: "a"},
		meta.Tag{HTTPEquiv: "refresh", Content: "r"},
	))

	keys := make([]string, 0, 3)
	for _, tag := range s.Sorted() {
		keys = append(keys, tag.Key())
	}
	require.Equal(t, []string{"author", "refresh", "viewport"}, keys)
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"head.yaml": {Data: []byte(`
title: Acme
description: Vector<T> &lt;docs&gt;
meta:
  - name: keywords
    content: acme, tools
  - http_equiv: X-UA-Compatible
    content: IE=edge
`)},
		"broken.yaml": {Data: []byte(`
meta:
  - content: orphan
`)},
	}

	t.Run("parses head", func(t *testing.T) {
		t.Parallel()

		d, err := meta.LoadDefaults(fsys, "head.yaml")
		require.NoError(t, err)
		require.Equal(t, "Acme", d.Title)
		require.Equal(t, "Vector<T> &lt;docs&gt;", d.Description)

		set, err := d.Set()
		require.NoError(t, err)
		require.Equal(t, "acme, tools", set["keywords"].Content)
		require.Equal(t, "IE=edge", set["X-UA-Compatible"].Content)
	})

	t.Run("rejects tag without identifier", func(t *testing.T) {
		t.Parallel()

		_, err := meta.LoadDefaults(fsys, "broken.yaml")
		require.ErrorIs(t, err, meta.ErrInvalidTag)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := meta.LoadDefaults(fsys, "nope.yaml")
		require.Error(t, err)
	})
}
