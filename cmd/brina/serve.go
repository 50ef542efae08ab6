package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/brinaregal/brina/internal/api"
	"github.com/brinaregal/brina/internal/bootstrap"
	"github.com/brinaregal/brina/internal/config"
	"github.com/brinaregal/brina/internal/media"
	"github.com/brinaregal/brina/internal/support/logging"
)

// requests per minute and client IP across the whole API
const apiRateLimit = 120

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	bootTime := time.Now().UTC()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Level:       cfg.Log.SlogLevel(),
		Format:      cfg.Log.Format,
		AddSource:   cfg.Log.AddSource,
		Environment: cfg.Log.Environment,
	})

	a, err := openApp(ctx, logger, bootTime)
	if err != nil {
		return err
	}
	defer a.Close()

	switch a.keySource {
	case bootstrap.JWTSigningKeySourceConfig:
		logger.Info("jwt signing key loaded", "source", "config")
	case bootstrap.JWTSigningKeySourceSettings:
		logger.Info("jwt signing key loaded", "source", "settings")
	case bootstrap.JWTSigningKeySourceGenerated:
		logger.Info("jwt signing key generated", "source", "generated-and-persisted")
	default:
		logger.Info("jwt signing key loaded", "source", "unknown")
	}

	scheduler, err := bootstrap.BuildScheduler(a.infra, a.services, logger)
	if err != nil {
		return err
	}
	scheduler.Start()

	opts := []api.RouterOption{
		api.WithRateLimit(a.infra.RateLimiter, apiRateLimit),
		api.WithAllowedOrigins(a.cfg.HTTP.AllowedOrigins...),
		api.WithUploadLimit(a.cfg.Media.MaxBytes),
	}
	if local, ok := a.infra.Uploader.(*media.LocalUploader); ok {
		opts = append(opts, api.WithUploads(local.Dir(), a.cfg.Media.Local.BaseURL))
	}
	router := api.NewRouter(logger, a.services.API, a.cfg.Metrics, opts...)

	server := bootstrap.NewHTTPServer(a.cfg.HTTP, router)

	go func() {
		logger.Info("http server starting", "addr", a.cfg.HTTP.Addr, "env", a.cfg.Log.Environment, "version", Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down http server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	// last chance for queued kitchen notifications
	if err := scheduler.RunNow(shutdownCtx, "notify.webhook"); err != nil {
		logger.Warn("final notification flush failed", "error", err)
	}
	logger.Info("server exited cleanly")
	return nil
}
