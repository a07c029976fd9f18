package guestbook

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// ContentRenderer turns an entry's content into HTML.
type ContentRenderer struct {
	md       goldmark.Markdown
	sanitize *bluemonday.Policy
}

// NewContentRenderer returns a renderer that treats content as markdown when
// markdown is true and as plain text otherwise.
func NewContentRenderer(markdown bool) *ContentRenderer {
	if !markdown {
		return &ContentRenderer{}
	}
	return &ContentRenderer{
		md:       goldmark.New(),
		sanitize: bluemonday.UGCPolicy(),
	}
}

func (r *ContentRenderer) Render(content string) string {
	if r.md == nil {
		return plainText(content)
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return plainText(content)
	}
	return r.sanitize.Sanitize(buf.String())
}

func plainText(content string) string {
	return "<p>" + strings.ReplaceAll(html.EscapeString(content), "\n", "<br>") + "</p>"
}
