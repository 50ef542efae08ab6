package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/brinaregal/brina/internal/bootstrap"
	"github.com/brinaregal/brina/internal/config"
	"github.com/brinaregal/brina/internal/migrations"
	"github.com/brinaregal/brina/internal/repository/sqlite"
)

// app is the fully wired backend shared by serve and the admin commands.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *sql.DB
	store     *sqlite.Store
	infra     *bootstrap.Infrastructure
	services  *bootstrap.Services
	keySource bootstrap.JWTSigningKeySource
}

// openApp opens and migrates the database, then builds infrastructure and services.
func openApp(ctx context.Context, logger *slog.Logger, startedAt time.Time) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	db, err := bootstrap.OpenSQLite(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	store := sqlite.NewStore(db)

	signingKey, source, err := bootstrap.ResolveJWTSigningKey(ctx, store.Settings(), cfg.Auth.SigningKey, time.Now)
	if err != nil {
		db.Close()
		return nil, err
	}
	cfg.Auth.SigningKey = signingKey

	infra, err := bootstrap.BuildInfrastructure(cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	services, err := bootstrap.BuildServices(cfg, store, infra, logger, bootstrap.ServiceOptions{
		Version:   Version,
		StartedAt: startedAt,
	})
	if err != nil {
		infra.Close()
		db.Close()
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		store:     store,
		infra:     infra,
		services:  services,
		keySource: source,
	}, nil
}

func (a *app) Close() {
	if err := a.infra.Close(); err != nil {
		a.logger.Warn("close infrastructure", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database", "error", err)
	}
}

// flushNotifications drains the outbox once so CLI decisions reach the kitchen.
func (a *app) flushNotifications(ctx context.Context) {
	scheduler, err := bootstrap.BuildScheduler(a.infra, a.services, a.logger)
	if err != nil {
		a.logger.Warn("build scheduler", "error", err)
		return
	}
	if err := scheduler.RunNow(ctx, "notify.webhook"); err != nil {
		a.logger.Warn("flush notifications", "error", err)
	}
}
