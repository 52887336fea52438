// Command seed imports articles from a JSON manifest into the configured
// store.
//
//	seed -manifest ./data/import/articles.json
//	seed -manifest https://old.example.com/export/articles.json -reset
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/bilgisen/newsdesk/internal/articles"
	"github.com/bilgisen/newsdesk/internal/cache"
	"github.com/bilgisen/newsdesk/internal/config"
	"github.com/bilgisen/newsdesk/internal/importer"
	"github.com/bilgisen/newsdesk/internal/logger"
	"github.com/bilgisen/newsdesk/internal/media"
	"github.com/bilgisen/newsdesk/internal/storage/backend"
)

func main() {
	os.Exit(run())
}

func run() int {
	manifest := flag.String("manifest", "./data/import/articles.json", "path or URL of the import manifest")
	reset := flag.Bool("reset", false, "forget previously imported slugs before running")
	concurrency := flag.Int("concurrency", 4, "items imported at once")
	flag.Parse()

	cfg := config.Load()
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: "stdout",
		Pretty: cfg.LogPretty,
	}); err != nil {
		panic(err)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open article store")
		return 1
	}
	defer store.Close()

	markers, err := cache.Open(ctx, cfg.RedisURL, cfg.RedisPrefix)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize import markers")
		return 1
	}
	defer markers.Close()

	if *reset {
		if err := markers.ClearProcessed(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to clear import markers")
			return 1
		}
		log.Info().Msg("Cleared import markers")
	}

	var images importer.ImageUploader
	uploader, err := media.NewR2Uploader(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize image uploader")
		return 1
	}
	if uploader != nil {
		images = uploader
	}

	proc := importer.NewProcessor(
		importer.NewFetcher(cfg.HTTPTimeout),
		articles.NewService(store),
		markers,
		images,
		importer.Options{MarkerTTL: cfg.CacheTTL, Concurrency: *concurrency},
	)

	summary, err := proc.Run(ctx, *manifest)
	if err != nil {
		log.Error().Err(err).Msg("Import aborted")
		return 1
	}
	if summary.Failed > 0 {
		log.Warn().Int("failed", summary.Failed).Msg("Some articles failed to import")
		return 1
	}
	log.Info().Msg("Import complete")
	return 0
}
