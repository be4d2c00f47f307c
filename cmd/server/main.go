package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/starterkit/modules/account"
	"github.com/dmitrymomot/starterkit/pkg/config"
	"github.com/dmitrymomot/starterkit/pkg/cookie"
	"github.com/dmitrymomot/starterkit/pkg/email"
	"github.com/dmitrymomot/starterkit/pkg/httpserver"
	"github.com/dmitrymomot/starterkit/pkg/logger"
	"github.com/dmitrymomot/starterkit/pkg/mongo"
	"github.com/dmitrymomot/starterkit/pkg/pg"
	"github.com/dmitrymomot/starterkit/pkg/redis"
	"github.com/dmitrymomot/starterkit/pkg/session"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`

	// StorageDriver selects the account store: postgres, mongo, or memory.
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
	// SessionStoreDriver selects where sessions live: redis or memory.
	SessionStoreDriver string `env:"SESSION_STORE" envDefault:"memory"`

	CookieSecrets []string `env:"COOKIE_SECRETS,required"`

	Account account.Config
	OAuth   account.OAuthConfig
	Session session.Config
	Email   email.Config
	HTTP    httpserver.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.Environment, "starterkit"))
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	cookieMgr, err := cookie.New(cfg.CookieSecrets)
	if err != nil {
		return fmt.Errorf("init cookie manager: %w", err)
	}

	var readiness []func(context.Context) error

	storage, cleanup, err := newStorage(ctx, cfg, log, &readiness)
	if err != nil {
		return err
	}
	defer cleanup()

	sessionOpts := []session.Option{
		session.WithCookieManager(cookieMgr),
		session.WithLogger(log),
	}
	if cfg.SessionStoreDriver == "redis" {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		sessionOpts = append(sessionOpts, session.WithStore(session.NewRedisStore(client)))
		readiness = append(readiness, redis.Healthcheck(client))
	}
	sessions := session.NewFromConfig(cfg.Session, sessionOpts...)

	mailer, err := newMailer(cfg, log)
	if err != nil {
		return err
	}

	svc := account.NewService(storage,
		account.WithConfig(cfg.Account),
		account.WithMailer(mailer),
		account.WithLogger(log),
	)

	handlerOpts := []account.HandlerOption{account.WithHandlerLogger(log)}
	if cfg.OAuth.GoogleClientID != "" || cfg.OAuth.FacebookClientID != "" {
		handlerOpts = append(handlerOpts,
			account.WithOAuth(account.NewOAuthProviders(cfg.OAuth, cfg.Account.AppURL)))
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/health", httpserver.HealthCheckHandler(ctx, log))
	r.Get("/ready", httpserver.HealthCheckHandler(ctx, log, readiness...))
	r.Mount("/", account.NewHandler(cfg.Account, svc, sessions, cookieMgr, handlerOpts...).Router())

	return httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log)).Run(ctx, r)
}

// newStorage builds the account store for the configured driver, returning a
// cleanup for the underlying connection.
func newStorage(ctx context.Context, cfg appConfig, log *slog.Logger, readiness *[]func(context.Context) error) (account.Storage, func(), error) {
	switch cfg.StorageDriver {
	case "postgres":
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return nil, nil, err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
			pool.Close()
			return nil, nil, err
		}
		*readiness = append(*readiness, pg.Healthcheck(pool))
		return account.NewPostgresStore(pool), pool.Close, nil

	case "mongo":
		var mongoCfg mongo.Config
		if err := config.Load(&mongoCfg); err != nil {
			return nil, nil, err
		}
		db, err := mongo.NewWithDatabase(ctx, mongoCfg, mongoCfg.Database)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() { _ = db.Client().Disconnect(context.Background()) }
		store := account.NewMongoStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		*readiness = append(*readiness, mongo.Healthcheck(db.Client()))
		return store, cleanup, nil

	default:
		log.Warn("using in-memory account storage, all data is lost on restart")
		return account.NewMemoryStore(), func() {}, nil
	}
}

// newMailer picks the email transport: Postmark when a server token is
// configured, otherwise the development sender that writes emails to disk.
func newMailer(cfg appConfig, log *slog.Logger) (email.EmailSender, error) {
	if cfg.Email.PostmarkServerToken != "" {
		return email.NewPostmarkClient(cfg.Email)
	}
	log.Warn("postmark is not configured, emails are written to disk",
		"dir", cfg.Email.DevOutputDir)
	return email.NewDevSender(cfg.Email.DevOutputDir), nil
}
