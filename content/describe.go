package content

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MaxDescription is the longest description, in runes.
const MaxDescription = 160

var paragraphParser = goldmark.New().Parser()

// Describe picks the summary shown in listings and meta tags: the
// description, then the excerpt, then the first paragraph of body.
func Describe(description, excerpt, body string) string {
	for _, s := range []string{description, excerpt, FirstParagraph(body)} {
		if s = collapse(s); s != "" {
			return Truncate(s, MaxDescription)
		}
	}
	return ""
}

// FirstParagraph returns the plain text of the first paragraph in a markdown
// or HTML body.
func FirstParagraph(body string) string {
	src := []byte(body)
	doc := paragraphParser.Parse(text.NewReader(src))

	var out string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindParagraph {
			return ast.WalkContinue, nil
		}
		if s := collapse(plainText(n, src)); s != "" {
			out = s
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})
	if out != "" {
		return out
	}

	if !strings.Contains(body, "<p") {
		return ""
	}
	hdoc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	hdoc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		out = collapse(s.Text())
		return out == ""
	})
	return out
}

func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.RawHTML, *ast.Image:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most max runes, cutting at a word boundary when
// one is available and ending with an ellipsis.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:max-1])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:-") + "…"
}
