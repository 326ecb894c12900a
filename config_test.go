package isoforge_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/isoforge"
	"github.com/dmitrymomot/isoforge/pkg/session"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := isoforge.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "/rpc", cfg.RPCPath)
	assert.Equal(t, "app", cfg.MountID)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "__sid", cfg.Cookie.Name)
	assert.InDelta(t, 30, cfg.RateLimit.RPS, 0.001)
	assert.Equal(t, 60, cfg.RateLimit.Burst)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("APP_TITLE", "Contacts")
	t.Setenv("RPC_PATH", "/api/rpc")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("RPC_RATE_LIMIT_RPS", "5")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("REDIS_POOL_SIZE", "4")

	cfg, err := isoforge.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "Contacts", cfg.Title)
	assert.Equal(t, "/api/rpc", cfg.RPCPath)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.Cookie.Secure)
	assert.InDelta(t, 5, cfg.RateLimit.RPS, 0.001)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Redis.URL)
	assert.Equal(t, 4, cfg.Redis.PoolSize)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")

	_, err := isoforge.LoadConfig()
	assert.Error(t, err)
}

func TestConfig_Options(t *testing.T) {
	t.Setenv("APP_TITLE", "Contacts")
	t.Setenv("METRICS_PATH", "/metrics")
	t.Setenv("METRICS_NAMESPACE", "contacts")
	t.Setenv("RPC_PATH", "/api/rpc")

	cfg, err := isoforge.LoadConfig()
	require.NoError(t, err)

	app := isoforge.New(append(cfg.Options(),
		isoforge.WithRPC(nil, cfg.RPCOptions()...),
	)...)

	assert.Equal(t, "Contacts", app.Defaults().Title)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "contacts_")

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rpc", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestConfig_OpenSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory without redis", func(t *testing.T) {
		store, closeStore, err := isoforge.Config{}.OpenSessionStore(ctx)
		require.NoError(t, err)
		assert.IsType(t, &session.MemoryStore{}, store)
		assert.NoError(t, closeStore(ctx))
	})

	t.Run("redis when configured", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := isoforge.Config{}
		cfg.Redis.URL = "redis://" + mr.Addr()

		store, closeStore, err := cfg.OpenSessionStore(ctx)
		require.NoError(t, err)
		assert.IsType(t, &session.RedisStore{}, store)
		assert.NoError(t, closeStore(ctx))
	})
}
