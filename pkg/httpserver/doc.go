// Package httpserver wraps net/http with graceful shutdown, configurable
// timeouts, health-check handlers, and structured logging via slog.
//
// Run blocks until the context is cancelled, then drains in-flight
// requests within the shutdown timeout. Signal handling belongs to the
// caller; main wires it with signal.NotifyContext:
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
//
// HealthCheckHandler serves liveness probes when called without dependency
// checks and readiness probes when given them:
//
//	r.Get("/health", httpserver.HealthCheckHandler(ctx, log, pg.Healthcheck(pool)))
package httpserver
