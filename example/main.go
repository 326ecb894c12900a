package main

import (
	"context"
	"embed"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/isoforge"
	"github.com/dmitrymomot/isoforge/example/contacts"
	"github.com/dmitrymomot/isoforge/example/views"
	"github.com/dmitrymomot/isoforge/middlewares"
	"github.com/dmitrymomot/isoforge/pkg/logger"
	"github.com/dmitrymomot/isoforge/pkg/redis"
	"github.com/dmitrymomot/isoforge/pkg/rpc"
	"github.com/dmitrymomot/isoforge/pkg/session"
)

//go:embed head.yaml public
var assets embed.FS

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := isoforge.LoadConfig()
	if err != nil {
		return err
	}
	log := cfg.Logger(middlewares.RequestIDExtractor(), logger.VPathExtractor())

	store, closeStore, err := cfg.OpenSessionStore(ctx)
	if err != nil {
		return err
	}

	repo := contacts.NewRepo(
		contacts.Contact{Name: "Ada Lovelace", Email: "ada@example.com"},
		contacts.Contact{Name: "Grace Hopper", Email: "grace@example.com"},
	)
	procs := rpc.NewRegistry()
	contacts.Register(procs, repo)

	var app *isoforge.App
	opts := append(cfg.Options(),
		isoforge.WithCustomLogger(log),
		isoforge.WithMetaFile(assets, "head.yaml"),
		isoforge.WithViews(views.Registry()),
		isoforge.WithRPC(procs, cfg.RPCOptions()...),
		isoforge.WithSessionStore(store, cfg.SessionOptions()...),
		isoforge.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
		),
		isoforge.WithHandlers(contacts.NewHandler(func() *isoforge.App { return app })),
		isoforge.WithErrorHandler(handleError),
		isoforge.WithStaticFiles("/static/", assets, "public"),
		isoforge.WithHealthChecks(readiness(store)...),
	)
	app = isoforge.New(opts...)

	return app.Run(cfg.Addr,
		isoforge.Logger(log),
		isoforge.ShutdownTimeout(cfg.ShutdownTimeout),
		isoforge.ShutdownHook(closeStore),
		isoforge.ShutdownHook(logger.FlushSentry(2*time.Second)),
	)
}

// handleError sends anonymous visitors hitting an editor page to the list.
func handleError(r isoforge.Request, err error) error {
	if errors.Is(err, isoforge.ErrNotAuthorized) && r.Session() == nil {
		return r.Go("/contacts")
	}
	return err
}

func readiness(store isoforge.SessionStore) []isoforge.HealthOption {
	rs, ok := store.(*session.RedisStore)
	if !ok {
		return nil
	}
	return []isoforge.HealthOption{
		isoforge.WithReadinessCheck("sessions", redis.Healthcheck(rs.Client())),
	}
}
