// Package redis opens the Redis connection backing the session store and
// exposes its readiness check and shutdown hook.
//
//	client, err := redis.Open(ctx, redis.Config{URL: "redis://localhost:6379/0"})
//	if err != nil {
//	    return err
//	}
//	app := isoforge.New(
//	    isoforge.WithSessionStore(session.NewRedisStore(client)),
//	    isoforge.WithHealthChecks(isoforge.WithReadinessCheck("redis", redis.Healthcheck(client))),
//	)
//	return app.Run(":8080", isoforge.ShutdownHook(redis.Shutdown(client)))
//
// Config carries env tags, so it can be filled by caarlos0/env as part of the
// application config.
package redis
