package web

import (
	"embed"
	"html/template"
	"unicode/utf8"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templateFunctions = template.FuncMap{
	"truncate": Truncate,
}

// page parses the shared layout together with one page template.
func page(name string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFunctions).
		ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html"))
}

// Truncate cuts s to at most n runes and always appends an ellipsis, the way
// article cards present their excerpt.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) > n {
		s = string([]rune(s)[:n])
	}
	return s + "..."
}
