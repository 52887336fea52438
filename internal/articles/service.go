// Package articles holds the article query and mutation rules: which rows are
// visible to which caller, how listings are filtered and ordered, and how
// writes are validated before they reach the store.
package articles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bilgisen/newsdesk/internal/models"
	"github.com/bilgisen/newsdesk/internal/storage"
)

// Service is constructed once at process start with the store it reads and
// writes. It keeps no mutable state of its own.
type Service struct {
	store    storage.Store
	validate *Validator
}

// NewService wires a service to store.
func NewService(store storage.Store) *Service {
	return &Service{
		store:    store,
		validate: NewValidator(),
	}
}

// ListPublished returns published articles, newest date first. limit 0 means
// no limit.
func (s *Service) ListPublished(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	published := true
	return s.ListAll(ctx, models.ListFilter{Published: &published, Limit: limit, Offset: offset})
}

// ListAll returns articles for the administrative listing. A nil
// filter.Published returns every article.
func (s *Service) ListAll(ctx context.Context, filter models.ListFilter) ([]*models.Article, error) {
	verr := &ValidationError{}
	if filter.Limit < 0 {
		verr.add("limit", "min")
	}
	if filter.Offset < 0 {
		verr.add("offset", "min")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	list, err := s.store.ListArticles(ctx, filter)
	if err != nil {
		return nil, mapStoreError("list articles", err)
	}
	return list, nil
}

// PublishedSlugs returns the slugs of every published article.
func (s *Service) PublishedSlugs(ctx context.Context) ([]string, error) {
	list, err := s.ListPublished(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(list))
	for _, a := range list {
		slugs = append(slugs, a.Slug)
	}
	return slugs, nil
}

// Get returns an article by id whatever its visibility.
func (s *Service) Get(ctx context.Context, id string) (*models.Article, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	article, err := s.store.GetArticle(ctx, id)
	if err != nil {
		return nil, mapStoreError("get article", err)
	}
	return article, nil
}

// GetPublishedBySlug returns the published article with slug. A missing slug
// and an unpublished article both yield ErrNotFound.
func (s *Service) GetPublishedBySlug(ctx context.Context, slug string) (*models.Article, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrNotFound
	}
	article, err := s.store.GetArticleBySlug(ctx, slug, true)
	if err != nil {
		return nil, mapStoreError("get article by slug", err)
	}
	if !article.Published {
		return nil, ErrNotFound
	}
	return article, nil
}

// Create validates input and inserts it.
func (s *Service) Create(ctx context.Context, input models.NewArticle) (*models.Article, error) {
	if err := s.validate.NewArticle(input); err != nil {
		return nil, err
	}
	article, err := s.store.CreateArticle(ctx, input)
	if err != nil {
		return nil, mapStoreError("create article", err)
	}
	return article, nil
}

// Update applies patch to the article with id. An empty patch returns the
// current row.
func (s *Service) Update(ctx context.Context, id string, patch models.ArticlePatch) (*models.Article, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	if err := s.validate.Patch(patch); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.Get(ctx, id)
	}
	article, err := s.store.UpdateArticle(ctx, id, patch)
	if err != nil {
		return nil, mapStoreError("update article", err)
	}
	return article, nil
}

// SetImage points the article's image_url at url.
func (s *Service) SetImage(ctx context.Context, id, url string) (*models.Article, error) {
	return s.Update(ctx, id, models.ArticlePatch{ImageURL: models.Some(&url)})
}

// Delete removes the article. Deleting an unknown id succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if err := s.store.DeleteArticle(ctx, id); err != nil {
		return mapStoreError("delete article", err)
	}
	return nil
}

// ParsePublishedParam turns the optional published query parameter into a
// filter value. Absent means no filter; present means raw == "true".
func ParsePublishedParam(raw string, present bool) *bool {
	if !present {
		return nil
	}
	published := raw == "true"
	return &published
}

func mapStoreError(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrAlreadyExists):
		return ErrConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %s: %w", ErrStoreFailure, op, err)
	}
}
