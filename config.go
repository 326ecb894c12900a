package isoforge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/isoforge/pkg/logger"
	"github.com/dmitrymomot/isoforge/pkg/metrics"
	"github.com/dmitrymomot/isoforge/pkg/redis"
	"github.com/dmitrymomot/isoforge/pkg/rpc"
	"github.com/dmitrymomot/isoforge/pkg/session"
)

// Config is the environment-driven part of an application's setup.
//
// Example:
//
//	cfg, err := isoforge.LoadConfig()
//	if err != nil {
//	    return err
//	}
//	store, closeStore, err := cfg.OpenSessionStore(ctx)
//	if err != nil {
//	    return err
//	}
//	app := isoforge.New(append(cfg.Options(),
//	    isoforge.WithCustomLogger(cfg.Logger()),
//	    isoforge.WithSessionStore(store, cfg.SessionOptions()...),
//	    isoforge.WithRPC(procs, cfg.RPCOptions()...),
//	)...)
//	return app.Run(cfg.Addr, isoforge.ShutdownHook(closeStore))
type Config struct {
	Addr             string        `env:"ADDR" envDefault:":8080"`
	Component        string        `env:"LOG_COMPONENT" envDefault:"isoforge"`
	Title            string        `env:"APP_TITLE"`
	Description      string        `env:"APP_DESCRIPTION"`
	MountID          string        `env:"MOUNT_ID" envDefault:"app"`
	RPCPath          string        `env:"RPC_PATH" envDefault:"/rpc"`
	MetricsNamespace string        `env:"METRICS_NAMESPACE" envDefault:"isoforge"`
	MetricsPath      string        `env:"METRICS_PATH"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	Cookie    session.CookieConfig
	RateLimit rpc.RateLimit
	Sentry    logger.SentryConfig
	Redis     redis.Config `envPrefix:"REDIS_"`
}

// LoadConfig parses Config from the environment.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("isoforge: load config: %w", err)
	}
	return cfg, nil
}

// Options turns the head, routing and metrics settings into app options.
// Metrics are recorded only when MetricsPath is set.
func (c Config) Options() []Option {
	opts := []Option{
		WithTitle(c.Title),
		WithDescription(c.Description),
		WithMountID(c.MountID),
		WithRPCPath(c.RPCPath),
	}
	if c.MetricsPath != "" {
		opts = append(opts, WithMetrics(metrics.New(c.MetricsNamespace), c.MetricsPath))
	}
	return opts
}

// RPCOptions returns the JSON-RPC handler options, rate limit included.
func (c Config) RPCOptions() []rpc.HandlerOption {
	return []rpc.HandlerOption{rpc.WithRateLimit(c.RateLimit)}
}

// SessionOptions returns the session cookie and lifetime options.
func (c Config) SessionOptions() []SessionOption {
	return []SessionOption{
		WithSessionCookie(c.Cookie),
		WithSessionTTL(c.SessionTTL),
	}
}

// Logger builds the JSON logger, forwarding warnings and errors to Sentry
// when a DSN is configured.
func (c Config) Logger(extractors ...ContextExtractor) *slog.Logger {
	return logger.NewWithSentry(c.Sentry, extractors...).With("component", c.Component)
}

// OpenSessionStore connects to Redis when a URL is configured and falls back
// to an in-memory store otherwise. The returned function releases the store;
// use it as a shutdown hook.
func (c Config) OpenSessionStore(ctx context.Context) (SessionStore, func(context.Context) error, error) {
	if c.Redis.URL == "" {
		return session.NewMemoryStore(), func(context.Context) error { return nil }, nil
	}

	client, err := redis.Open(ctx, c.Redis)
	if err != nil {
		return nil, nil, err
	}
	return session.NewRedisStore(client), redis.Shutdown(client), nil
}
