package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bilgisen/newsdesk/internal/models"
)

// Parser normalizes manifest items and article bodies.
type Parser struct {
	mainRegex *regexp.Regexp
}

func NewParser() *Parser {
	return &Parser{
		mainRegex: regexp.MustCompile(`(?is)<main[^>]*>(.*)</main>`),
	}
}

// ExtractMain returns the inner HTML of the page's <main> element, or the
// whole document when there is none.
func (p *Parser) ExtractMain(document string) string {
	if m := p.mainRegex.FindStringSubmatch(document); m != nil {
		return strings.TrimSpace(m[1])
	}
	return document
}

// Placeholder is the body stored for an item whose content could not be read.
func Placeholder(slug string) string {
	return fmt.Sprintf("<p>Content migration pending for %s</p>", slug)
}

// NormalizeItem trims the text fields of a manifest item.
func (p *Parser) NormalizeItem(item models.ImportItem) models.ImportItem {
	item.Slug = strings.TrimSpace(item.Slug)
	item.Date = strings.TrimSpace(item.Date)
	item.Kicker = strings.TrimSpace(item.Kicker)
	item.Title = strings.TrimSpace(item.Title)
	item.Excerpt = strings.TrimSpace(item.Excerpt)
	item.ImageFile = strings.TrimSpace(item.ImageFile)
	item.ContentSource = strings.TrimSpace(item.ContentSource)
	item.Meta = trimPtr(item.Meta)
	item.ImageURL = trimPtr(item.ImageURL)
	return item
}

// ValidateItem checks the fields an item needs before its content is loaded.
// Field formats are checked again when the article is created.
func (p *Parser) ValidateItem(item models.ImportItem) error {
	var errs []error
	for _, f := range []struct{ name, value string }{
		{"slug", item.Slug},
		{"date", item.Date},
		{"kicker", item.Kicker},
		{"title", item.Title},
		{"excerpt", item.Excerpt},
	} {
		if f.value == "" {
			errs = append(errs, fmt.Errorf("missing required field: %s", f.name))
		}
	}
	return errors.Join(errs...)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
