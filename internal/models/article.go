package models

import "time"

// Article is a single editorial piece as stored and served.
type Article struct {
	ID        string    `json:"id" db:"id"`
	Slug      string    `json:"slug" db:"slug"`
	Date      string    `json:"date" db:"date"`
	Kicker    string    `json:"kicker" db:"kicker"`
	Title     string    `json:"title" db:"title"`
	Excerpt   string    `json:"excerpt" db:"excerpt"`
	Content   string    `json:"content" db:"content"`
	Meta      *string   `json:"meta" db:"meta"`
	ImageURL  *string   `json:"image_url" db:"image_url"`
	Published bool      `json:"published" db:"published"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewArticle is the create payload. The store assigns id and timestamps.
type NewArticle struct {
	Slug      string  `json:"slug" validate:"required,slug,max=200"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Kicker    string  `json:"kicker" validate:"required,max=100"`
	Title     string  `json:"title" validate:"required,max=300"`
	Excerpt   string  `json:"excerpt" validate:"required"`
	Content   string  `json:"content" validate:"required"`
	Meta      *string `json:"meta" validate:"omitempty,max=300"`
	ImageURL  *string `json:"image_url" validate:"omitempty,url"`
	Published bool    `json:"published"`
}

// Field holds one optional patch value. Set is false when the caller did not
// mention the field at all.
type Field[T any] struct {
	Set   bool
	Value T
}

// Some returns a Field carrying v.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// ArticlePatch is a partial update. Only writable columns appear here; id and
// the store-managed timestamps can never be overwritten through a patch.
type ArticlePatch struct {
	Slug      Field[string]
	Date      Field[string]
	Kicker    Field[string]
	Title     Field[string]
	Excerpt   Field[string]
	Content   Field[string]
	Meta      Field[*string]
	ImageURL  Field[*string]
	Published Field[bool]
}

// Empty reports whether the patch changes nothing.
func (p ArticlePatch) Empty() bool {
	return !p.Slug.Set && !p.Date.Set && !p.Kicker.Set && !p.Title.Set &&
		!p.Excerpt.Set && !p.Content.Set && !p.Meta.Set && !p.ImageURL.Set &&
		!p.Published.Set
}

// ListFilter narrows an article listing. A nil Published means no visibility
// filter, which is not the same as filtering on false. Limit 0 is unbounded.
type ListFilter struct {
	Published *bool
	Limit     int
	Offset    int
}
