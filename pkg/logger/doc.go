// Package logger builds configured slog.Logger instances with environment
// presets and context-driven attribute injection.
//
// The factory defaults to JSON output at info level. Development preset
// switches to text output at debug level:
//
//	log := logger.New(logger.WithEnvironment(cfg.AppEnv, "starterkit"))
//	logger.SetAsDefault(log)
//
// Context extractors add request-scoped attributes (request id, account id)
// to every record logged with a matching context:
//
//	log := logger.New(logger.WithContextValue("request_id", ctxKey))
//
// The attr helpers keep attribute keys consistent across the codebase:
//
//	log.Error("login failed", logger.Error(err), logger.Email(email))
package logger
