package storage

import (
	"strings"

	"github.com/bilgisen/newsdesk/internal/models"
	"github.com/jmoiron/sqlx"
)

// ArticleColumns is the select list shared by every backend, in scan order.
var ArticleColumns = []string{
	"id", "slug", "date", "kicker", "title", "excerpt", "content",
	"meta", "image_url", "published", "created_at", "updated_at",
}

// Dialect captures the SQL differences between backends.
type Dialect struct {
	// BindType is the sqlx placeholder style.
	BindType int
	// DateExpr selects the date column as YYYY-MM-DD text.
	DateExpr string
	// UnboundedLimit is emitted before OFFSET when no limit was requested.
	UnboundedLimit string
}

// SelectList renders ArticleColumns for this dialect.
func (d Dialect) SelectList() string {
	cols := make([]string, len(ArticleColumns))
	copy(cols, ArticleColumns)
	if d.DateExpr != "" {
		cols[2] = d.DateExpr + " AS date"
	}
	return strings.Join(cols, ", ")
}

// ListQuery builds the ordered listing query for filter.
func (d Dialect) ListQuery(filter models.ListFilter) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString("SELECT ")
	b.WriteString(d.SelectList())
	b.WriteString(" FROM articles")
	if filter.Published != nil {
		b.WriteString(" WHERE published = ?")
		args = append(args, *filter.Published)
	}
	b.WriteString(" ORDER BY date DESC, created_at DESC, id ASC")
	switch {
	case filter.Limit > 0:
		b.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	case filter.Offset > 0 && d.UnboundedLimit != "":
		b.WriteString(" ")
		b.WriteString(d.UnboundedLimit)
	}
	if filter.Offset > 0 {
		b.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}
	return sqlx.Rebind(d.BindType, b.String()), args
}

// PatchAssignments lists the columns a patch writes and their values. Column
// names come from this fixed list only, never from caller input.
func PatchAssignments(patch models.ArticlePatch) ([]string, []any) {
	var (
		cols []string
		args []any
	)
	add := func(set bool, col string, value any) {
		if set {
			cols = append(cols, col)
			args = append(args, value)
		}
	}
	add(patch.Slug.Set, "slug", patch.Slug.Value)
	add(patch.Date.Set, "date", patch.Date.Value)
	add(patch.Kicker.Set, "kicker", patch.Kicker.Value)
	add(patch.Title.Set, "title", patch.Title.Value)
	add(patch.Excerpt.Set, "excerpt", patch.Excerpt.Value)
	add(patch.Content.Set, "content", patch.Content.Value)
	add(patch.Meta.Set, "meta", patch.Meta.Value)
	add(patch.ImageURL.Set, "image_url", patch.ImageURL.Value)
	add(patch.Published.Set, "published", patch.Published.Value)
	return cols, args
}
