package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// AppDeps are the collaborators NewApp does not build itself
type AppDeps struct {
	Logger   Logger
	Accounts Accounts
	// Hasher defaults to the one configured by auth.hash_algorithm
	Hasher PasswordHasher
	// Registry defaults to a fresh registry with go and process collectors
	Registry *prometheus.Registry
	// Ready backs /healthz, nil means always ready
	Ready func(ctx context.Context) error
}

// NewApp builds the HTTP application. It fails when the signing key is missing.
func NewApp(cfg *ServiceConfig, deps AppDeps) (*fiber.App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if deps.Accounts == nil {
		return nil, errors.New("accounts store is required", errors.CategoryInternal)
	}

	logger := resolveLogger(deps.Logger)

	hasher := deps.Hasher
	if hasher == nil {
		var err error
		hasher, err = NewPasswordHasher(cfg.GetHashAlgorithm(), cfg.GetHashCost())
		if err != nil {
			return nil, err
		}
	}

	tokens, err := NewTokenServiceFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	validator, err := NewSessionValidator(tokens, cfg, cfg.Auth.RetiredSigningKeys, logger)
	if err != nil {
		return nil, err
	}

	carrier := NewSessionCarrier(cfg)

	if cfg.Server.Environment == EnvDevelopment {
		logger.Debug("resolved configuration", "config", print.MaybePrettyJSON(redactedConfig(cfg)))
	}

	app := fiber.New(fiber.Config{
		AppName:               "authsvc",
		ErrorHandler:          ErrorHandler(logger),
		DisableStartupMessage: true,
	})

	var metrics *Metrics
	if cfg.Metrics.Enabled {
		registry := deps.Registry
		if registry == nil {
			registry = NewMetricsRegistry()
		}
		metrics = NewMetrics(registry)
		app.Use(metrics.Middleware())
		app.Get(cfg.Metrics.Path, MetricsHandler(registry))
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if deps.Ready != nil {
			if err := deps.Ready(c.UserContext()); err != nil {
				logger.Warn("readiness check failed", "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use(CurrentUserMiddleware(carrier, validator, cfg.GetContextKey(), logger))

	controller := NewAuthController(deps.Accounts, hasher, tokens, carrier,
		WithControllerLogger(logger),
		WithControllerMetrics(metrics),
		WithControllerContextKey(cfg.GetContextKey()),
		WithControllerDebug(cfg.Server.Environment == EnvDevelopment),
	)

	srv := router.NewFiberAdapter(func(*fiber.App) *fiber.App { return app })
	RegisterAuthRoutes(srv.Router().Group(cfg.GetMountPath()), controller)

	app.Use(NotFoundHandler)

	return app, nil
}

// Service owns the database handle behind the HTTP application
type Service struct {
	App    *fiber.App
	DB     *bun.DB
	Repo   RepositoryManager
	Config *ServiceConfig
	logger Logger
}

// NewService opens the database, migrates it and builds the application
func NewService(ctx context.Context, cfg *ServiceConfig, logger Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger = resolveLogger(logger)

	hasher, err := NewPasswordHasher(cfg.GetHashAlgorithm(), cfg.GetHashCost())
	if err != nil {
		return nil, err
	}

	db, err := OpenDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	repo := NewRepositoryManager(db, hasher,
		WithHashidIDs(cfg.GetUseHashid()),
		WithAccountsLogger(logger),
	)

	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to migrate accounts")
	}

	app, err := NewApp(cfg, AppDeps{
		Logger:   logger,
		Accounts: repo.Accounts(),
		Hasher:   hasher,
		Ready: func(ctx context.Context) error {
			return db.PingContext(ctx)
		},
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Service{
		App:    app,
		DB:     db,
		Repo:   repo,
		Config: cfg,
		logger: logger,
	}, nil
}

// Listen blocks until the server stops or ctx is done, then shuts down
func (s *Service) Listen(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.Config.Server.Addr, "mount", s.Config.GetMountPath())
		errc <- s.App.Listen(s.Config.Server.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		return s.App.Shutdown()
	}
}

// Close releases the database
func (s *Service) Close() error {
	return s.DB.Close()
}

func redactedConfig(cfg *ServiceConfig) ServiceConfig {
	out := *cfg
	if out.Auth.SigningKey != "" {
		out.Auth.SigningKey = "********"
	}
	if len(out.Auth.RetiredSigningKeys) > 0 {
		out.Auth.RetiredSigningKeys = []string{"********"}
	}
	return out
}
