// Package storage defines the persistence contract for articles.
package storage

import (
	"context"
	"errors"

	"github.com/bilgisen/newsdesk/internal/models"
)

var (
	// ErrNotFound indicates no article matched the lookup key.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained value (the slug) is taken.
	ErrAlreadyExists = errors.New("record already exists")
)

// Store persists articles. Implementations are safe for concurrent use and
// delegate all isolation to the underlying database.
type Store interface {
	// CreateArticle inserts a row and returns it with id and timestamps set.
	CreateArticle(ctx context.Context, article models.NewArticle) (*models.Article, error)
	// GetArticle returns the article with the given id regardless of visibility.
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	// GetArticleBySlug matches on slug, and on published = true when
	// publishedOnly is set. Both misses return ErrNotFound.
	GetArticleBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Article, error)
	// ListArticles returns articles ordered by date descending.
	ListArticles(ctx context.Context, filter models.ListFilter) ([]*models.Article, error)
	// UpdateArticle applies the set fields of patch and returns the updated
	// row, or ErrNotFound when id matches nothing.
	UpdateArticle(ctx context.Context, id string, patch models.ArticlePatch) (*models.Article, error)
	// DeleteArticle removes the row. Deleting a missing id is not an error.
	DeleteArticle(ctx context.Context, id string) error
	// Close releases the database handle.
	Close() error
}
