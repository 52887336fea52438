package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/bilgisen/newsdesk/internal/models"
	"github.com/bilgisen/newsdesk/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "articles.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func strPtr(s string) *string { return &s }

func newArticle(slug, date string, published bool) models.NewArticle {
	return models.NewArticle{
		Slug:      slug,
		Date:      date,
		Kicker:    "ANALYSIS",
		Title:     "Title " + slug,
		Excerpt:   "Excerpt " + slug,
		Content:   "<p>" + slug + "</p>",
		Meta:      strPtr("By Ben Mak"),
		Published: published,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "articles.db")
	for i := 0; i < 2; i++ {
		store, err := Open(path)
		if err != nil {
			t.Fatalf("open %d: %v", i+1, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close %d: %v", i+1, err)
		}
	}
}

func TestCreateGetArticleRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	input := newArticle("when-permission-fails", "2025-10-29", true)
	input.ImageURL = strPtr("https://cdn.example.com/a.png")

	created, err := store.CreateArticle(context.Background(), input)
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps")
	}

	got, err := store.GetArticle(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get article: %v", err)
	}
	if got.Slug != input.Slug || got.Date != input.Date || got.Title != input.Title {
		t.Fatalf("got %+v, want fields of %+v", got, input)
	}
	if got.Kicker != input.Kicker || got.Excerpt != input.Excerpt || got.Content != input.Content {
		t.Fatalf("got %+v, want fields of %+v", got, input)
	}
	if got.Meta == nil || *got.Meta != *input.Meta {
		t.Fatalf("meta = %v, want %q", got.Meta, *input.Meta)
	}
	if got.ImageURL == nil || *got.ImageURL != *input.ImageURL {
		t.Fatalf("image_url = %v, want %q", got.ImageURL, *input.ImageURL)
	}
	if !got.Published {
		t.Fatal("expected published")
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestCreateArticleNullableFields(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	input := newArticle("no-meta", "2025-10-01", false)
	input.Meta = nil

	created, err := store.CreateArticle(context.Background(), input)
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	got, err := store.GetArticle(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get article: %v", err)
	}
	if got.Meta != nil || got.ImageURL != nil {
		t.Fatalf("expected nil meta and image_url, got %v %v", got.Meta, got.ImageURL)
	}
}

func TestCreateArticleDuplicateSlug(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	input := newArticle("dup", "2025-10-01", true)
	if _, err := store.CreateArticle(context.Background(), input); err != nil {
		t.Fatalf("create initial: %v", err)
	}
	_, err := store.CreateArticle(context.Background(), input)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate create error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestGetArticleNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetArticle(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestGetArticleBySlugRespectsPublished(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.CreateArticle(ctx, newArticle("draft", "2025-10-01", false)); err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if _, err := store.CreateArticle(ctx, newArticle("live", "2025-10-02", true)); err != nil {
		t.Fatalf("create live: %v", err)
	}

	if _, err := store.GetArticleBySlug(ctx, "draft", true); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("published-only draft lookup error = %v, want not found", err)
	}
	if _, err := store.GetArticleBySlug(ctx, "nope", true); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing slug error = %v, want not found", err)
	}
	draft, err := store.GetArticleBySlug(ctx, "draft", false)
	if err != nil {
		t.Fatalf("unfiltered draft lookup: %v", err)
	}
	if draft.Published {
		t.Fatal("draft should be unpublished")
	}
	live, err := store.GetArticleBySlug(ctx, "live", true)
	if err != nil {
		t.Fatalf("live lookup: %v", err)
	}
	if live.Slug != "live" {
		t.Fatalf("slug = %q", live.Slug)
	}
}

func TestListArticlesFilterAndOrder(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	fixtures := []models.NewArticle{
		newArticle("b", "2025-10-20", true),
		newArticle("a", "2025-10-29", true),
		newArticle("c", "2025-10-25", false),
		newArticle("d", "2025-10-01", true),
	}
	for _, f := range fixtures {
		if _, err := store.CreateArticle(ctx, f); err != nil {
			t.Fatalf("create %s: %v", f.Slug, err)
		}
	}

	all, err := store.ListArticles(ctx, models.ListFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if got := slugs(all); got != "a,c,b,d" {
		t.Fatalf("all order = %s, want a,c,b,d", got)
	}

	published := true
	live, err := store.ListArticles(ctx, models.ListFilter{Published: &published})
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if got := slugs(live); got != "a,b,d" {
		t.Fatalf("published order = %s, want a,b,d", got)
	}

	unpublished := false
	drafts, err := store.ListArticles(ctx, models.ListFilter{Published: &unpublished})
	if err != nil {
		t.Fatalf("list drafts: %v", err)
	}
	if got := slugs(drafts); got != "c" {
		t.Fatalf("drafts = %s, want c", got)
	}

	page, err := store.ListArticles(ctx, models.ListFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if got := slugs(page); got != "c,b" {
		t.Fatalf("page = %s, want c,b", got)
	}

	tail, err := store.ListArticles(ctx, models.ListFilter{Offset: 3})
	if err != nil {
		t.Fatalf("list tail: %v", err)
	}
	if got := slugs(tail); got != "d" {
		t.Fatalf("tail = %s, want d", got)
	}
}

func TestListArticlesEmptyIsNotNil(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	list, err := store.ListArticles(context.Background(), models.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("list = %#v, want empty slice", list)
	}
}

func TestUpdateArticleIsPartial(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	created, err := store.CreateArticle(ctx, newArticle("partial", "2025-10-10", true))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store.now = func() time.Time { return created.CreatedAt.Add(time.Minute) }

	updated, err := store.UpdateArticle(ctx, created.ID, models.ArticlePatch{Title: models.Some("Renamed")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Fatalf("title = %q", updated.Title)
	}
	if updated.Slug != created.Slug || updated.Published != created.Published || updated.Content != created.Content {
		t.Fatalf("unpatched fields changed: %+v", updated)
	}
	if updated.Meta == nil || *updated.Meta != *created.Meta {
		t.Fatalf("meta changed: %v", updated.Meta)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at changed: %v", updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updated_at = %v, want after %v", updated.UpdatedAt, created.UpdatedAt)
	}
}

func TestUpdateArticleClearsNullable(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	created, err := store.CreateArticle(ctx, newArticle("clear", "2025-10-10", true))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := store.UpdateArticle(ctx, created.ID, models.ArticlePatch{
		Meta:      models.Some[*string](nil),
		Published: models.Some(false),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Meta != nil {
		t.Fatalf("meta = %v, want nil", *updated.Meta)
	}
	if updated.Published {
		t.Fatal("expected unpublished")
	}
}

func TestUpdateArticleMissingAndConflict(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.UpdateArticle(ctx, "missing", models.ArticlePatch{Title: models.Some("x")}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing update error = %v, want not found", err)
	}
	if _, err := store.UpdateArticle(ctx, "missing", models.ArticlePatch{}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing empty update error = %v, want not found", err)
	}

	first, err := store.CreateArticle(ctx, newArticle("first", "2025-10-10", true))
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := store.CreateArticle(ctx, newArticle("second", "2025-10-11", true)); err != nil {
		t.Fatalf("create second: %v", err)
	}
	_, err = store.UpdateArticle(ctx, first.ID, models.ArticlePatch{Slug: models.Some("second")})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("conflicting slug error = %v, want already exists", err)
	}
}

func TestDeleteArticleIsIdempotent(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	created, err := store.CreateArticle(ctx, newArticle("gone", "2025-10-10", true))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := store.DeleteArticle(ctx, created.ID); err != nil {
			t.Fatalf("delete %d: %v", i+1, err)
		}
	}
	if _, err := store.GetArticle(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get after delete error = %v, want not found", err)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.ListArticles(ctx, models.ListFilter{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context canceled", err)
	}
}

func slugs(articles []*models.Article) string {
	out := ""
	for i, a := range articles {
		if i > 0 {
			out += ","
		}
		out += a.Slug
	}
	return out
}
