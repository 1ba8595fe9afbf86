package markdown

import (
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.UGCPolicy()

// Sanitize strips scripts, event handlers and other unsafe markup from raw
// HTML that appears in a post body.
func Sanitize(raw string) string {
	return sanitizer.Sanitize(raw)
}

// IsHTML reports whether content was authored as HTML rather than markdown.
func IsHTML(content string) bool {
	s := strings.TrimLeftFunc(content, unicode.IsSpace)
	return strings.HasPrefix(s, "<")
}

// FromHTML converts an HTML-authored body to markdown.
func FromHTML(content string) (string, error) {
	md, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}
