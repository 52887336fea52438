package web

import (
	"fmt"
	"html/template"

	"github.com/bilgisen/newsdesk/internal/config"
	"github.com/microcosm-cc/bluemonday"
)

// ContentPolicy turns stored article HTML into markup safe to place in a page.
type ContentPolicy func(content string) template.HTML

// NewContentPolicy returns the policy named by CONTENT_POLICY.
func NewContentPolicy(name string) (ContentPolicy, error) {
	switch name {
	case "", config.PolicySanitize:
		p := bluemonday.UGCPolicy()
		p.AddTargetBlankToFullyQualifiedLinks(true)
		return func(content string) template.HTML {
			return template.HTML(p.Sanitize(content))
		}, nil
	case config.PolicyTrusted:
		// Editors are the only writers; content is rendered as stored.
		return func(content string) template.HTML {
			return template.HTML(content)
		}, nil
	default:
		return nil, fmt.Errorf("unknown content policy %q", name)
	}
}
