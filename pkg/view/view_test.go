package view_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/isoforge/pkg/view"
)

func text(s string) view.Component {
	return func(view.Attrs) templ.Component { return templ.Raw(s) }
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	v, err := view.Normalize(" /pages/home/ ")
	require.NoError(t, err)
	require.Equal(t, "pages/home", v)

	for _, bad := range []string{"", "/", "  ", "../etc"} {
		_, err := view.Normalize(bad)
		require.ErrorIs(t, err, view.ErrInvalidVPath, bad)
	}
}

func TestDefaultComponent(t *testing.T) {
	t.Parallel()

	_, err := view.DefaultComponent("pages/x", &view.Module{Bundles: []string{"x.css"}})
	require.ErrorIs(t, err, view.ErrNoDefaultExport)

	var cfgErr *view.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "pages/x", cfgErr.VPath)

	_, err = view.DefaultComponent("pages/x", nil)
	require.ErrorIs(t, err, view.ErrNoDefaultExport)

	c, err := view.DefaultComponent("pages/x", &view.Module{Default: text("x")})
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("unknown path", func(t *testing.T) {
		t.Parallel()

		_, err := view.NewRegistry().Resolve(context.Background(), "nope")
		require.ErrorIs(t, err, view.ErrModuleNotFound)
	})

	t.Run("resolves once under concurrency", func(t *testing.T) {
		t.Parallel()

		reg := view.NewRegistry()
		var calls atomic.Int32
		reg.Register("pages/home", func(context.Context) (*view.Module, error) {
			calls.Add(1)
			time.Sleep(5 * time.Millisecond)
			return &view.Module{Default: text("home")}, nil
		})

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m, err := reg.Resolve(context.Background(), "/pages/home")
				require.NoError(t, err)
				require.NotNil(t, m.Default)
			}()
		}
		wg.Wait()

		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("cancelled caller does not cancel the shared load", func(t *testing.T) {
		t.Parallel()

		reg := view.NewRegistry()
		entered := make(chan struct{})
		release := make(chan struct{})
		factoryErr := make(chan error, 1)
		var once sync.Once
		reg.Register("slow", func(ctx context.Context) (*view.Module, error) {
			once.Do(func() { close(entered) })
			<-release
			select {
			case factoryErr <- ctx.Err():
			default:
			}
			return &view.Module{Default: text("slow")}, nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		first := make(chan error, 1)
		go func() {
			_, err := reg.Resolve(ctx, "slow")
			first <- err
		}()
		<-entered

		second := make(chan error, 1)
		go func() {
			m, err := reg.Resolve(context.Background(), "slow")
			if err == nil && m.Default == nil {
				err = errors.New("module without default")
			}
			second <- err
		}()

		cancel()
		require.ErrorIs(t, <-first, context.Canceled)

		close(release)
		require.NoError(t, <-second)
		require.NoError(t, <-factoryErr)
	})

	t.Run("failed factory is retried", func(t *testing.T) {
		t.Parallel()

		reg := view.NewRegistry()
		var calls atomic.Int32
		reg.Register("flaky", func(context.Context) (*view.Module, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("bundle fetch failed")
			}
			return &view.Module{Default: text("ok")}, nil
		})

		_, err := reg.Resolve(context.Background(), "flaky")
		require.Error(t, err)

		_, err = reg.Resolve(context.Background(), "flaky")
		require.NoError(t, err)
		require.Equal(t, int32(2), calls.Load())
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		t.Parallel()

		reg := view.NewRegistry()
		reg.Static("a", text("a"))
		require.Panics(t, func() { reg.Static("/a/", text("a")) })
		require.True(t, reg.Has("a"))
	})
}

func TestSerial(t *testing.T) {
	t.Parallel()

	t.Run("one load at a time", func(t *testing.T) {
		t.Parallel()

		reg := view.NewRegistry()
		reg.Static("a", text("a"))
		loader := view.NewSerial(reg)

		var active, peak atomic.Int32
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := loader.Load(context.Background(), "a", func(*view.Module) error {
					n := active.Add(1)
					for {
						p := peak.Load()
						if n <= p || peak.CompareAndSwap(p, n) {
							break
						}
					}
					time.Sleep(time.Millisecond)
					active.Add(-1)
					return nil
				})
				require.NoError(t, err)
			}()
		}
		wg.Wait()

		require.Equal(t, int32(1), peak.Load())
	})

	t.Run("queued load honours context", func(t *testing.T) {
		t.Parallel()

		reg := view.NewRegistry()
		reg.Static("a", text("a"))
		loader := view.NewSerial(reg)

		release := make(chan struct{})
		started := make(chan struct{})
		go func() {
			_ = loader.Load(context.Background(), "a", func(*view.Module) error {
				close(started)
				<-release
				return nil
			})
		}()
		<-started

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := loader.Load(ctx, "a", func(*view.Module) error { return nil })
		require.ErrorIs(t, err, context.DeadlineExceeded)
		close(release)
	})

	t.Run("propagates resolve and callback errors", func(t *testing.T) {
		t.Parallel()

		reg := view.NewRegistry()
		reg.Static("a", text("a"))
		loader := view.NewSerial(reg)

		err := loader.Load(context.Background(), "missing", func(*view.Module) error { return nil })
		require.ErrorIs(t, err, view.ErrModuleNotFound)

		boom := errors.New("mount failed")
		err = loader.Load(context.Background(), "a", func(*view.Module) error { return boom })
		require.ErrorIs(t, err, boom)
	})
}

func TestDirect(t *testing.T) {
	t.Parallel()

	reg := view.NewRegistry()
	reg.Static("a", text("a"), "a.css")

	var got *view.Module
	err := view.NewDirect(reg).Load(context.Background(), "a", func(m *view.Module) error {
		got = m
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a.css"}, got.Bundles)
}
