package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/starterkit/pkg/logger"
)

// HealthCheckHandler serves health endpoints. With no checks it answers
// 200 "ALIVE" unconditionally, which suits a liveness probe. With checks
// it runs every one and answers 200 "READY" only if all pass; the first
// failure is logged and the handler answers 500 "NOT_READY".
func HealthCheckHandler(ctx context.Context, log *slog.Logger, checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ALIVE"))
			return
		}

		for _, check := range checks {
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Error(err),
					logger.Component("httpserver"),
				)
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	}
}
