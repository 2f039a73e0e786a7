// Package app wires configuration into the storage provider, services and
// optional push history shared by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sankalp69/Visa-prediction/internal/cache"
	"github.com/sankalp69/Visa-prediction/internal/config"
	"github.com/sankalp69/Visa-prediction/internal/repository"
	"github.com/sankalp69/Visa-prediction/internal/repository/postgres"
	"github.com/sankalp69/Visa-prediction/internal/service"
	"github.com/sankalp69/Visa-prediction/internal/storage"
)

type App struct {
	Config    *config.Config
	Provider  storage.Provider
	Artifacts *service.ArtifactService
	Estimator *service.ModelEstimator
	Pushes    repository.PushRepository

	db *postgres.DB
}

// New validates cfg and builds every dependency. The database is only
// connected when DB_ENABLED is set; otherwise push history is discarded.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	listings, err := cache.NewListingCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("listing cache unavailable, continuing without it")
		listings = cache.NewNoopListingCache()
	}

	artifacts := service.NewArtifactService(
		provider.Bucket(cfg.Artifacts.Bucket),
		cfg.Artifacts.Bucket,
		cfg.Artifacts.ModelRegistryKey,
		service.WithListingCache(listings),
	)

	a := &App{
		Config:    cfg,
		Provider:  provider,
		Artifacts: artifacts,
		Estimator: service.NewModelEstimator(artifacts, cfg.Artifacts.ModelRegistryKey, cfg.Artifacts.EstimatorTmpDir),
		Pushes:    repository.NewNoopPushRepository(),
	}

	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		pushes := postgres.NewPushRepository(db)
		if err := pushes.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		a.db = db
		a.Pushes = pushes
	}

	log.Info().
		Str("backend", cfg.Storage.Backend).
		Str("bucket", cfg.Artifacts.Bucket).
		Bool("push_history", cfg.Database.Enabled).
		Msg("artifact storage ready")
	return a, nil
}

// Close releases the database pool, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
