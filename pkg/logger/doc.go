// Package logger builds the framework's slog loggers.
//
// Loggers write JSON to stdout and enrich every record with request-scoped
// attributes pulled from the context by ContextExtractor functions. Extraction
// runs on each log call, so values such as the request ID or the view being
// rendered are always current:
//
//	log := logger.New(middlewares.RequestIDExtractor(), logger.VPathExtractor())
//	log.InfoContext(ctx, "page rendered")
//	// {"level":"INFO","msg":"page rendered","request_id":"...","vpath":"pages/home"}
//
// NewWithSentry additionally forwards warnings and errors to Sentry. When the
// DSN is empty it falls back to stdout only, so the same code path works in
// development and production.
//
// NewNope returns a logger that discards everything and is the default used
// wherever no logger was configured.
package logger
