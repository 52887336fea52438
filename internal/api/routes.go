package api

import (
	"time"

	"github.com/bilgisen/newsdesk/internal/config"
	"github.com/bilgisen/newsdesk/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp creates the Fiber app with the shared middleware and error handler.
func NewApp(cfg *config.Config) *fiber.App {
	bodyLimit := 4 * 1024 * 1024
	if limit := int(cfg.MaxImageSize) + 1024*1024; limit > bodyLimit {
		bodyLimit = limit
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.SiteName,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    bodyLimit,
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	return app
}

// SetupRoutes registers the administrative API under /api.
func SetupRoutes(app *fiber.App, handlers *Handlers) {
	api := app.Group("/api")

	api.Get("/health", handlers.HealthCheck)

	articles := api.Group("/articles")
	articles.Get("", middleware.ValidateQuery[listQuery](), handlers.ListArticles)
	articles.Post("", handlers.CreateArticle)
	articles.Get("/:id", handlers.GetArticle)
	articles.Put("/:id", handlers.UpdateArticle)
	articles.Delete("/:id", handlers.DeleteArticle)
	articles.Post("/:id/image", handlers.UploadImage)

	// 404 Handler for the API prefix
	api.Use(NotFound)
}

// NotFound answers unknown API routes.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Endpoint not found",
	})
}
