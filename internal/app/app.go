// Package app wires configuration into a ready persona service with its
// optional infrastructure.
package app

import (
	"context"
	"fmt"

	"github.com/genpersona/api/internal/config"
	"github.com/genpersona/api/internal/database"
	"github.com/genpersona/api/internal/eventbus"
	"github.com/genpersona/api/internal/history"
	"github.com/genpersona/api/internal/llm"
	"github.com/genpersona/api/internal/namecache"
	"github.com/genpersona/api/internal/persona"
	"github.com/genpersona/api/internal/seeds"
	"go.uber.org/zap"
)

// App holds the wired components. Infrastructure fields are nil when not
// configured or unreachable at startup.
type App struct {
	Config    *config.Config
	Breaker   *llm.Breaker
	Generator *persona.Generator
	Service   *persona.Service
	Seeds     *seeds.Corpus

	DB      *database.Postgres
	Redis   *database.Redis
	Bus     *eventbus.Bus
	History *history.Service

	logger  *zap.Logger
	closers []func()
}

// New builds the app. With infra false only the generative client, the core
// and the seed corpus are wired.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, infra bool) (*App, error) {
	a := &App{Config: cfg, logger: logger}

	breaker, err := llm.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create generative client: %w", err)
	}
	a.Breaker = breaker

	spec := persona.DefaultFieldSpec()
	if cfg.FieldSpecPath != "" {
		if spec, err = persona.LoadFieldSpec(cfg.FieldSpecPath); err != nil {
			return nil, err
		}
		logger.Info("loaded field spec", zap.String("path", cfg.FieldSpecPath), zap.Int("version", spec.Version))
	}

	opts := persona.Options{
		PersonaModel:   cfg.PersonaModel,
		NameModel:      cfg.NameModel,
		MaxAttempts:    cfg.MaxAttempts,
		AttemptTimeout: cfg.AttemptTimeout,
	}
	a.Generator = persona.NewGenerator(breaker, spec, persona.NewNameCache(), opts, logger)

	if cfg.SeedPath != "" {
		corpus, err := seeds.Load(cfg.SeedPath)
		if err != nil {
			logger.Warn("seed corpus unavailable", zap.String("path", cfg.SeedPath), zap.Error(err))
		} else {
			a.Seeds = corpus
			logger.Info("seed corpus loaded", zap.Int("seeds", corpus.Len()))
		}
	}

	svcOpts := []persona.ServiceOption{persona.WithSeeds(a.Seeds)}
	if infra {
		svcOpts = append(svcOpts, a.connect(ctx)...)
	}
	a.Service = persona.NewService(a.Generator, logger, svcOpts...)
	return a, nil
}

// connect dials every configured collaborator. A failure is logged and the
// collaborator is left out; generation never depends on it.
func (a *App) connect(ctx context.Context) []persona.ServiceOption {
	cfg, logger := a.Config, a.logger
	var opts []persona.ServiceOption

	if cfg.DatabaseURL != "" {
		if err := database.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
		} else if db, err := database.NewPostgres(ctx, cfg.DatabaseURL); err != nil {
			logger.Error("failed to connect to database", zap.Error(err))
		} else {
			a.DB = db
			a.closers = append(a.closers, db.Close)
			a.History = history.NewService(db, logger)
			opts = append(opts, persona.WithRecorder(a.History))
			logger.Info("connected to database")
		}
	}

	if cfg.RedisURL != "" {
		if rdb, err := database.NewRedis(ctx, cfg.RedisURL); err != nil {
			logger.Error("failed to connect to redis", zap.Error(err))
		} else {
			a.Redis = rdb
			a.closers = append(a.closers, func() { _ = rdb.Close() })
			store := namecache.NewStore(rdb.Client(), logger)
			store.Warm(ctx, a.Generator.Cache())
			opts = append(opts, persona.WithCacheStore(store))
			logger.Info("connected to redis")
		}
	}

	if cfg.NATSURL != "" {
		if bus, err := eventbus.Connect(cfg.NATSURL, logger); err != nil {
			logger.Error("failed to connect to NATS", zap.Error(err))
		} else {
			a.Bus = bus
			a.closers = append(a.closers, bus.Close)
			opts = append(opts, persona.WithPublisher(bus))
		}
	}

	return opts
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Close releases infrastructure in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
