// Package postgres provides the hosted PostgreSQL article store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bilgisen/newsdesk/internal/models"
	"github.com/bilgisen/newsdesk/internal/storage"
	"github.com/bilgisen/newsdesk/internal/storage/migrate"
	"github.com/bilgisen/newsdesk/internal/storage/postgres/migrations"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

var dialect = storage.Dialect{
	BindType: sqlx.DOLLAR,
	DateExpr: "to_char(date, 'YYYY-MM-DD')",
}

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// SkipMigrations leaves the schema to the hosting platform.
	SkipMigrations bool
}

// Store persists articles in PostgreSQL.
type Store struct {
	conn *sqlx.DB
}

// Open connects to the database at url (postgres:// form) and applies
// embedded migrations unless disabled.
func Open(ctx context.Context, url string, opts Options) (*Store, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	sourceName, err := pq.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	conn, err := sqlx.Open("postgres", sourceName)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}
	if !opts.SkipMigrations {
		if err := migrate.Apply(ctx, conn.DB, migrations.FS, dialect.BindType); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return &Store{conn: conn}, nil
}

// New wraps an existing connection without running migrations.
func New(conn *sqlx.DB) *Store {
	return &Store{conn: conn}
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// CreateArticle inserts one article row and returns it as stored.
func (s *Store) CreateArticle(ctx context.Context, input models.NewArticle) (*models.Article, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var article models.Article
	err := s.conn.GetContext(
		ctx,
		&article,
		`INSERT INTO articles (
		   id, slug, date, kicker, title, excerpt, content,
		   meta, image_url, published
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+dialect.SelectList(),
		uuid.NewString(),
		input.Slug,
		input.Date,
		input.Kicker,
		input.Title,
		input.Excerpt,
		input.Content,
		input.Meta,
		input.ImageURL,
		input.Published,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrAlreadyExists
		}
		return nil, fmt.Errorf("create article: %w", err)
	}
	return &article, nil
}

// GetArticle returns one article by id.
func (s *Store) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var article models.Article
	err := s.conn.GetContext(ctx, &article, "SELECT "+dialect.SelectList()+" FROM articles WHERE id = $1", id)
	if err != nil {
		return nil, wrapLookup("get article", err)
	}
	return &article, nil
}

// GetArticleBySlug returns one article by slug, optionally requiring it to be
// published.
func (s *Store) GetArticleBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Article, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := "SELECT " + dialect.SelectList() + " FROM articles WHERE slug = $1"
	if publishedOnly {
		query += " AND published = TRUE"
	}
	var article models.Article
	if err := s.conn.GetContext(ctx, &article, query, slug); err != nil {
		return nil, wrapLookup("get article by slug", err)
	}
	return &article, nil
}

// ListArticles returns articles matching filter ordered by date descending.
func (s *Store) ListArticles(ctx context.Context, filter models.ListFilter) ([]*models.Article, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query, args := dialect.ListQuery(filter)
	articles := make([]*models.Article, 0)
	if err := s.conn.SelectContext(ctx, &articles, query, args...); err != nil {
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
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := sqlx.Rebind(dialect.BindType, "UPDATE articles SET "+strings.Join(sets, ", ")+
		" WHERE id = ? RETURNING "+dialect.SelectList())
	var article models.Article
	if err := s.conn.GetContext(ctx, &article, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrAlreadyExists
		}
		return nil, wrapLookup("update article", err)
	}
	return &article, nil
}

// DeleteArticle removes the row with the given id.
func (s *Store) DeleteArticle(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.conn == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func wrapLookup(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}

var _ storage.Store = (*Store)(nil)
