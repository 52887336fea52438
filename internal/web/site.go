// Package web renders the public site: the front page listing, article pages
// and the sitemap. Only published articles are ever shown.
package web

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"html/template"
	"net/url"
	"time"

	"github.com/bilgisen/newsdesk/internal/articles"
	"github.com/bilgisen/newsdesk/internal/config"
	"github.com/bilgisen/newsdesk/internal/logger"
	"github.com/bilgisen/newsdesk/internal/models"
	"github.com/gofiber/fiber/v2"
)

const linkedInShare = "https://www.linkedin.com/sharing/share-offsite/?url="

// Reader is the part of the article service the public site uses.
type Reader interface {
	ListPublished(ctx context.Context, limit, offset int) ([]*models.Article, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Article, error)
	PublishedSlugs(ctx context.Context) ([]string, error)
}

// Site holds the parsed templates and the article reader.
type Site struct {
	cfg      *config.Config
	articles Reader
	content  ContentPolicy
	home     *template.Template
	article  *template.Template
	errPage  *template.Template
}

// New creates the public site.
func New(cfg *config.Config, reader Reader) (*Site, error) {
	policy, err := NewContentPolicy(cfg.ContentPolicy)
	if err != nil {
		return nil, err
	}
	return &Site{
		cfg:      cfg,
		articles: reader,
		content:  policy,
		home:     page("home"),
		article:  page("article"),
		errPage:  page("error"),
	}, nil
}

// SetupRoutes registers the public pages. It must run after the API routes;
// its catch-all answers every remaining path with the HTML 404 page.
func SetupRoutes(app *fiber.App, site *Site) {
	app.Get("/", site.Home)
	app.Get("/articles/:slug", site.Article)
	app.Get("/sitemap.xml", site.Sitemap)
	app.Use(site.NotFound)
}

type layoutData struct {
	SiteName    string
	Title       string
	Description string
	Canonical   string
	Year        int
}

type cardView struct {
	Kicker   string
	Title    string
	Excerpt  string
	Meta     string
	ImageURL string
	URL      string
}

type homeData struct {
	layoutData
	Hero     *cardView
	Cards    []cardView
	PrevPage int
	NextPage int
}

type articleView struct {
	cardView
	Body     template.HTML
	ShareURL string
}

type articleData struct {
	layoutData
	Article articleView
}

type errorData struct {
	layoutData
	Heading string
	Message string
}

// Home renders the front page: the newest published article as the hero and
// the rest as cards. With PUBLIC_PAGE_SIZE set the listing is paged by
// ?page=N and only the first page carries a hero.
func (s *Site) Home(c *fiber.Ctx) error {
	pageNum := c.QueryInt("page", 1)
	if pageNum < 1 {
		pageNum = 1
	}

	limit, offset := 0, 0
	if size := s.cfg.PublicPageSize; size > 0 {
		// One extra row tells whether an older page exists.
		limit = size + 1
		offset = (pageNum - 1) * size
	}

	list, err := s.articles.ListPublished(c.Context(), limit, offset)
	if err != nil {
		// The front page degrades to an empty listing.
		logger.Get().Error().Err(err).Msg("Error fetching published articles")
		list = nil
	}

	data := homeData{layoutData: s.layout("", "", s.cfg.SiteURL+"/")}
	if size := s.cfg.PublicPageSize; size > 0 {
		if len(list) > size {
			list = list[:size]
			data.NextPage = pageNum + 1
		}
		if pageNum > 1 {
			data.PrevPage = pageNum - 1
		}
	}

	if pageNum == 1 && len(list) > 0 {
		hero := s.card(list[0])
		data.Hero = &hero
		list = list[1:]
	}
	data.Cards = make([]cardView, 0, len(list))
	for _, a := range list {
		data.Cards = append(data.Cards, s.card(a))
	}

	return s.render(c, fiber.StatusOK, s.home, data)
}

// Article renders one published article by slug.
func (s *Site) Article(c *fiber.Ctx) error {
	a, err := s.articles.GetPublishedBySlug(c.Context(), c.Params("slug"))
	if errors.Is(err, articles.ErrNotFound) {
		return s.NotFound(c)
	}
	if err != nil {
		logger.Get().Error().Err(err).Str("slug", c.Params("slug")).Msg("Error fetching article")
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong",
			"The article could not be loaded. Please try again later.")
	}

	view := articleView{
		cardView: s.card(a),
		Body:     s.content(a.Content),
		ShareURL: linkedInShare + url.QueryEscape(s.articleURL(a.Slug)),
	}
	data := articleData{
		layoutData: s.layout(a.Title, a.Excerpt, s.articleURL(a.Slug)),
		Article:    view,
	}
	return s.render(c, fiber.StatusOK, s.article, data)
}

// NotFound renders the HTML 404 page.
func (s *Site) NotFound(c *fiber.Ctx) error {
	return s.renderError(c, fiber.StatusNotFound, "Page not found",
		"The page you are looking for does not exist or is no longer available.")
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap lists the front page and every published article.
func (s *Site) Sitemap(c *fiber.Ctx) error {
	slugs, err := s.articles.PublishedSlugs(c.Context())
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error building sitemap")
		return fiber.ErrInternalServerError
	}

	doc := sitemap{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []sitemapURL{{Loc: s.cfg.SiteURL + "/"}},
	}
	for _, slug := range slugs {
		doc.URLs = append(doc.URLs, sitemapURL{Loc: s.articleURL(slug)})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(append([]byte(xml.Header), out...))
}

func (s *Site) card(a *models.Article) cardView {
	v := cardView{
		Kicker:  a.Kicker,
		Title:   a.Title,
		Excerpt: a.Excerpt,
		URL:     "/articles/" + url.PathEscape(a.Slug),
	}
	if a.Meta != nil {
		v.Meta = *a.Meta
	}
	if a.ImageURL != nil {
		v.ImageURL = *a.ImageURL
	}
	return v
}

func (s *Site) articleURL(slug string) string {
	return s.cfg.SiteURL + "/articles/" + url.PathEscape(slug)
}

func (s *Site) layout(title, description, canonical string) layoutData {
	return layoutData{
		SiteName:    s.cfg.SiteName,
		Title:       title,
		Description: description,
		Canonical:   canonical,
		Year:        time.Now().Year(),
	}
}

func (s *Site) renderError(c *fiber.Ctx, status int, heading, message string) error {
	return s.render(c, status, s.errPage, errorData{
		layoutData: s.layout(heading, "", ""),
		Heading:    heading,
		Message:    message,
	})
}

func (s *Site) render(c *fiber.Ctx, status int, tmpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.Get().Error().Err(err).Str("template", tmpl.Name()).Msg("Error rendering page")
		return fiber.ErrInternalServerError
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}
