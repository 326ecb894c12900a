// Package health serves liveness and readiness probes for an isoforge app.
//
// Liveness always answers OK while the process runs. Readiness runs every
// registered check concurrently under a shared timeout and reports 503 when
// any of them fails:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "sessions": redis.Healthcheck(client),
//	}, health.WithTimeout(2*time.Second)))
//
// Probes get plain text by default. Ask for JSON with ?format=json or an
// Accept: application/json header to see per-check results:
//
//	{"status":"unhealthy","checks":{"sessions":{"status":"unhealthy","error":"dial tcp: connection refused"}}}
package health
