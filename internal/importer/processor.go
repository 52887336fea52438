// Package importer loads articles from a JSON manifest into the store. Items
// already imported are remembered in the marker store and skipped on later
// runs.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bilgisen/newsdesk/internal/articles"
	"github.com/bilgisen/newsdesk/internal/cache"
	"github.com/bilgisen/newsdesk/internal/logger"
	"github.com/bilgisen/newsdesk/internal/models"
	"github.com/bilgisen/newsdesk/internal/utils"
)

// ArticleCreator creates validated articles.
type ArticleCreator interface {
	Create(ctx context.Context, input models.NewArticle) (*models.Article, error)
}

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, owner string, data []byte) (string, error)
}

// Options tune a Processor.
type Options struct {
	// MarkerTTL is how long an imported slug is remembered. Zero keeps it
	// forever.
	MarkerTTL time.Duration
	// Concurrency bounds the number of items processed at once.
	Concurrency int
}

// Summary counts the outcome of an import run.
type Summary struct {
	Total    int
	Imported int
	Skipped  int
	Failed   int
}

type outcome int

const (
	imported outcome = iota
	skipped
	failed
)

type Processor struct {
	fetcher *Fetcher
	parser  *Parser
	creator ArticleCreator
	markers cache.MarkerStore
	images  ImageUploader
	opts    Options
}

// NewProcessor wires a processor. images may be nil, in which case image_file
// entries are ignored.
func NewProcessor(fetcher *Fetcher, creator ArticleCreator, markers cache.MarkerStore, images ImageUploader, opts Options) *Processor {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Processor{
		fetcher: fetcher,
		parser:  NewParser(),
		creator: creator,
		markers: markers,
		images:  images,
		opts:    opts,
	}
}

// Run loads the manifest at source and imports its items.
func (p *Processor) Run(ctx context.Context, source string) (Summary, error) {
	manifest, err := p.fetcher.LoadManifest(ctx, source)
	if err != nil {
		return Summary{}, err
	}
	return p.Import(ctx, manifest)
}

// Import processes every item of the manifest. A canceled context stops
// scheduling new items; the summary covers the items that ran.
func (p *Processor) Import(ctx context.Context, manifest *Manifest) (Summary, error) {
	log := logger.Get()
	start := time.Now()
	log.Info().
		Str("source", manifest.Source).
		Int("items", len(manifest.Items)).
		Msg("Starting article import")

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		summary = Summary{Total: len(manifest.Items)}
	)
	semaphore := make(chan struct{}, p.opts.Concurrency)

schedule:
	for _, item := range manifest.Items {
		select {
		case <-ctx.Done():
			break schedule
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(item models.ImportItem) {
			defer wg.Done()
			defer func() { <-semaphore }()

			result := p.importItem(ctx, manifest, item)

			mu.Lock()
			defer mu.Unlock()
			switch result {
			case imported:
				summary.Imported++
			case skipped:
				summary.Skipped++
			default:
				summary.Failed++
			}
		}(item)
	}
	wg.Wait()

	log.Info().
		Int("total", summary.Total).
		Int("imported", summary.Imported).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Dur("duration", time.Since(start)).
		Msg("Finished article import")

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (p *Processor) importItem(ctx context.Context, manifest *Manifest, item models.ImportItem) outcome {
	log := logger.Get()
	item = p.parser.NormalizeItem(item)

	if err := p.parser.ValidateItem(item); err != nil {
		log.Error().Err(err).Str("slug", item.Slug).Msg("Invalid import item")
		return failed
	}

	key := utils.MarkerKey("article", item.Slug)
	done, err := p.markers.IsProcessed(ctx, key)
	if err != nil {
		log.Error().Err(err).Str("slug", item.Slug).Msg("Error checking import marker")
		return failed
	}
	if done {
		log.Debug().Str("slug", item.Slug).Msg("Skipping already imported article")
		return skipped
	}

	content := p.loadContent(ctx, manifest, item)

	if item.ImageFile != "" && p.images != nil {
		if url, err := p.uploadImage(ctx, manifest, item); err != nil {
			log.Warn().Err(err).Str("slug", item.Slug).Msg("Image upload failed, keeping image_url")
		} else {
			item.ImageURL = &url
		}
	}

	article, err := p.creator.Create(ctx, item.NewArticle(content))
	switch {
	case errors.Is(err, articles.ErrConflict):
		log.Info().Str("slug", item.Slug).Msg("Article already exists, skipping")
		p.mark(ctx, key, item.Slug)
		return skipped
	case err != nil:
		log.Error().Err(err).Str("slug", item.Slug).Msg("Error importing article")
		return failed
	}

	p.mark(ctx, key, item.Slug)
	log.Info().Str("slug", article.Slug).Str("id", article.ID).Msg("Imported article")
	return imported
}

func (p *Processor) loadContent(ctx context.Context, manifest *Manifest, item models.ImportItem) string {
	if item.Content != "" {
		return item.Content
	}
	if item.ContentSource == "" {
		return Placeholder(item.Slug)
	}

	body, err := p.fetcher.Fetch(ctx, manifest.Resolve(item.ContentSource))
	if err != nil {
		logger.Get().Warn().Err(err).Str("slug", item.Slug).Msg("Could not load content")
		return Placeholder(item.Slug)
	}
	return p.parser.ExtractMain(string(body))
}

func (p *Processor) uploadImage(ctx context.Context, manifest *Manifest, item models.ImportItem) (string, error) {
	data, err := p.fetcher.Fetch(ctx, manifest.Resolve(item.ImageFile))
	if err != nil {
		return "", err
	}
	url, err := p.images.UploadImage(ctx, item.Slug, data)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", item.ImageFile, err)
	}
	return url, nil
}

func (p *Processor) mark(ctx context.Context, key, slug string) {
	if err := p.markers.MarkProcessed(ctx, key, p.opts.MarkerTTL); err != nil {
		logger.Get().Warn().Err(err).Str("slug", slug).Msg("Error writing import marker")
	}
}
