// Package sqlite provides a SQLite-backed article store for local development
// and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bilgisen/newsdesk/internal/models"
	"github.com/bilgisen/newsdesk/internal/storage"
	"github.com/bilgisen/newsdesk/internal/storage/migrate"
	"github.com/bilgisen/newsdesk/internal/storage/sqlite/migrations"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var dialect = storage.Dialect{
	BindType:       sqlx.QUESTION,
	UnboundedLimit: "LIMIT -1",
}

// Store persists articles in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite article store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate.Apply(context.Background(), sqlDB, migrations.FS, dialect.BindType); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateArticle inserts one article row.
func (s *Store) CreateArticle(ctx context.Context, input models.NewArticle) (*models.Article, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	article := &models.Article{
		ID:        uuid.NewString(),
		Slug:      input.Slug,
		Date:      input.Date,
		Kicker:    input.Kicker,
		Title:     input.Title,
		Excerpt:   input.Excerpt,
		Content:   input.Content,
		Meta:      input.Meta,
		ImageURL:  input.ImageURL,
		Published: input.Published,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO articles (
		   id, slug, date, kicker, title, excerpt, content,
		   meta, image_url, published, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		article.ID,
		article.Slug,
		article.Date,
		article.Kicker,
		article.Title,
		article.Excerpt,
		article.Content,
		article.Meta,
		article.ImageURL,
		article.Published,
		toMillis(article.CreatedAt),
		toMillis(article.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrAlreadyExists
		}
		return nil, fmt.Errorf("create article: %w", err)
	}
	return article, nil
}

// GetArticle returns one article by id.
func (s *Store) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+dialect.SelectList()+" FROM articles WHERE id = ?", id)
	article, err := scanArticle(row)
	if err != nil {
		return nil, wrapLookup("get article", err)
	}
	return article, nil
}

// GetArticleBySlug returns one article by slug, optionally requiring it to be
// published.
func (s *Store) GetArticleBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Article, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := "SELECT " + dialect.SelectList() + " FROM articles WHERE slug = ?"
	args := []any{slug}
	if publishedOnly {
		query += " AND published = ?"
		args = append(args, true)
	}
	article, err := scanArticle(s.sqlDB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, wrapLookup("get article by slug", err)
	}
	return article, nil
}

// ListArticles returns articles matching filter ordered by date descending.
func (s *Store) ListArticles(ctx context.Context, filter models.ListFilter) ([]*models.Article, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query, args := dialect.ListQuery(filter)
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*models.Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("list articles: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// UpdateArticle applies patch to the row with the given id.
func (s *Store) UpdateArticle(ctx context.Context, id string, patch models.ArticlePatch) (*models.Article, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	cols, args := storage.PatchAssignments(patch)
	if len(cols) == 0 {
		return s.GetArticle(ctx, id)
	}

	sets := make([]string, 0, len(cols)+1)
	for _, col := range cols {
		sets = append(sets, col+" = ?")
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, toMillis(s.now()), id)

	query := "UPDATE articles SET " + strings.Join(sets, ", ") +
		" WHERE id = ? RETURNING " + dialect.SelectList()
	article, err := scanArticle(s.sqlDB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrAlreadyExists
		}
		return nil, wrapLookup("update article", err)
	}
	return article, nil
}

// DeleteArticle removes the row with the given id.
func (s *Store) DeleteArticle(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (*models.Article, error) {
	var (
		article   models.Article
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(
		&article.ID,
		&article.Slug,
		&article.Date,
		&article.Kicker,
		&article.Title,
		&article.Excerpt,
		&article.Content,
		&article.Meta,
		&article.ImageURL,
		&article.Published,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	article.CreatedAt = fromMillis(createdAt)
	article.UpdatedAt = fromMillis(updatedAt)
	return &article, nil
}

func wrapLookup(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.Store = (*Store)(nil)
