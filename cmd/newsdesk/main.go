package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bilgisen/newsdesk/internal/api"
	"github.com/bilgisen/newsdesk/internal/articles"
	"github.com/bilgisen/newsdesk/internal/config"
	"github.com/bilgisen/newsdesk/internal/logger"
	"github.com/bilgisen/newsdesk/internal/media"
	"github.com/bilgisen/newsdesk/internal/storage/backend"
	"github.com/bilgisen/newsdesk/internal/web"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	output := "stdout"
	if cfg.LogFile != "" {
		output = cfg.LogFile
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: cfg.LogPretty,
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().
		Str("env", cfg.Env).
		Str("db_driver", cfg.DBDriver).
		Str("content_policy", cfg.ContentPolicy).
		Msg("Starting application...")

	ctx := context.Background()

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open article store")
	}
	defer func() {
		log.Info().Msg("Closing article store...")
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing article store")
		}
	}()

	svc := articles.NewService(store)

	// Image uploads stay disabled without a bucket; the endpoint answers 503.
	var images api.ImageUploader
	uploader, err := media.NewR2Uploader(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize image uploader")
	}
	if uploader != nil {
		images = uploader
	} else {
		log.Warn().Msg("R2_BUCKET not set, image uploads disabled")
	}

	site, err := web.New(cfg, svc)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize public site")
	}

	app := api.NewApp(cfg)
	api.SetupRoutes(app, api.NewHandlers(cfg, svc, images))
	web.SetupRoutes(app, site)

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
