package models

// ImportItem is one entry of an article import manifest.
type ImportItem struct {
	Slug          string  `json:"slug"`
	Date          string  `json:"date"`
	Kicker        string  `json:"kicker"`
	Title         string  `json:"title"`
	Excerpt       string  `json:"excerpt"`
	Meta          *string `json:"meta"`
	ImageURL      *string `json:"image_url"`
	ImageFile     string  `json:"image_file,omitempty"`
	Published     bool    `json:"published"`
	ContentSource string  `json:"content_source,omitempty"`
	Content       string  `json:"content,omitempty"`
}

// NewArticle converts the manifest entry into a create payload with the
// resolved content.
func (i ImportItem) NewArticle(content string) NewArticle {
	return NewArticle{
		Slug:      i.Slug,
		Date:      i.Date,
		Kicker:    i.Kicker,
		Title:     i.Title,
		Excerpt:   i.Excerpt,
		Content:   content,
		Meta:      i.Meta,
		ImageURL:  i.ImageURL,
		Published: i.Published,
	}
}
