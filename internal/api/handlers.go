package api

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/bilgisen/newsdesk/internal/articles"
	"github.com/bilgisen/newsdesk/internal/config"
	"github.com/bilgisen/newsdesk/internal/logger"
	"github.com/bilgisen/newsdesk/internal/media"
	"github.com/bilgisen/newsdesk/internal/middleware"
	"github.com/bilgisen/newsdesk/internal/models"
	"github.com/gofiber/fiber/v2"
)

// ImageUploader stores an image for an article and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, owner string, data []byte) (string, error)
}

// Handlers serves the administrative article API.
type Handlers struct {
	config   *config.Config
	articles *articles.Service
	images   ImageUploader
}

// NewHandlers wires handlers to the article service. images may be nil, in
// which case image uploads answer 503.
func NewHandlers(cfg *config.Config, svc *articles.Service, images ImageUploader) *Handlers {
	return &Handlers{
		config:   cfg,
		articles: svc,
		images:   images,
	}
}

type listQuery struct {
	Limit  int `query:"limit" validate:"min=0,max=500"`
	Offset int `query:"offset" validate:"min=0"`
}

// HealthCheck handles GET /api/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": h.config.Version,
		"time":    time.Now().Format(time.RFC3339),
	})
}

// ListArticles handles GET /api/articles. Without a published parameter every
// article is returned.
func (h *Handlers) ListArticles(c *fiber.Ctx) error {
	q := middleware.Query[listQuery](c)
	filter := models.ListFilter{
		Published: articles.ParsePublishedParam(c.Query("published"), c.Context().QueryArgs().Has("published")),
		Limit:     q.Limit,
		Offset:    q.Offset,
	}

	list, err := h.articles.ListAll(c.Context(), filter)
	if err != nil {
		return h.fail(c, err, "Failed to fetch articles")
	}
	return c.JSON(list)
}

// CreateArticle handles POST /api/articles
func (h *Handlers) CreateArticle(c *fiber.Ctx) error {
	input, err := articles.DecodeNewArticle(c.Body())
	if err != nil {
		return h.fail(c, err, "Failed to create article")
	}

	article, err := h.articles.Create(c.Context(), input)
	if err != nil {
		return h.fail(c, err, "Failed to create article")
	}

	logger.Get().Info().Str("id", article.ID).Str("slug", article.Slug).Msg("Article created")
	return c.Status(fiber.StatusCreated).JSON(article)
}

// GetArticle handles GET /api/articles/:id. Unpublished articles are returned.
func (h *Handlers) GetArticle(c *fiber.Ctx) error {
	article, err := h.articles.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "Failed to fetch article")
	}
	return c.JSON(article)
}

// UpdateArticle handles PUT /api/articles/:id with a partial body.
func (h *Handlers) UpdateArticle(c *fiber.Ctx) error {
	patch, err := articles.DecodePatch(c.Body())
	if err != nil {
		return h.fail(c, err, "Failed to update article")
	}

	article, err := h.articles.Update(c.Context(), c.Params("id"), patch)
	if err != nil {
		return h.fail(c, err, "Failed to update article")
	}
	return c.JSON(article)
}

// DeleteArticle handles DELETE /api/articles/:id. Unknown ids succeed.
func (h *Handlers) DeleteArticle(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.articles.Delete(c.Context(), id); err != nil {
		return h.fail(c, err, "Failed to delete article")
	}

	logger.Get().Info().Str("id", id).Msg("Article deleted")
	return c.JSON(fiber.Map{
		"message": "Article deleted successfully",
	})
}

// UploadImage handles POST /api/articles/:id/image with a multipart "image"
// file and points the article's image_url at the uploaded object.
func (h *Handlers) UploadImage(c *fiber.Ctx) error {
	if h.images == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Image uploads are not configured",
		})
	}

	article, err := h.articles.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "Failed to upload image")
	}

	header, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image file is required",
		})
	}
	if h.config.MaxImageSize > 0 && header.Size > h.config.MaxImageSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "Image too large",
		})
	}

	file, err := header.Open()
	if err != nil {
		return h.fail(c, err, "Failed to upload image")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return h.fail(c, err, "Failed to upload image")
	}

	url, err := h.images.UploadImage(c.Context(), article.Slug, data)
	if err != nil {
		return h.fail(c, err, "Failed to upload image")
	}

	updated, err := h.articles.SetImage(c.Context(), article.ID, url)
	if err != nil {
		return h.fail(c, err, "Failed to upload image")
	}

	logger.Get().Info().Str("id", article.ID).Str("image_url", url).Msg("Article image uploaded")
	return c.JSON(updated)
}

// fail renders err according to the article error taxonomy. Store failures
// are logged and answered with message; their detail never reaches the
// client.
func (h *Handlers) fail(c *fiber.Ctx, err error, message string) error {
	var verr *articles.ValidationError
	switch {
	case errors.Is(err, articles.ErrMalformedInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, articles.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Article not found",
		})
	case errors.Is(err, articles.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "An article with this slug already exists",
		})
	case errors.Is(err, media.ErrTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "Image too large",
		})
	case errors.Is(err, media.ErrUnsupportedType), errors.Is(err, media.ErrEmpty):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported image type",
		})
	}

	logger.Get().Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("id", c.Params("id")).
		Msg(message)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": message,
	})
}
