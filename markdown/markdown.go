// Package markdown renders post bodies to HTML for the article templates.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

var reOrderedList = regexp.MustCompile(`^(\d+)\.\s`)

// classes are the fixed styling hooks written on every block element.
var classes = map[string]string{
	"h1":         "text-3xl font-bold tracking-tight mt-10 mb-4",
	"h2":         "text-2xl font-semibold mt-10 mb-4",
	"h3":         "text-xl font-semibold mt-8 mb-3",
	"p":          "leading-relaxed mb-5",
	"ul":         "list-disc pl-6 mb-5 space-y-2",
	"ol":         "list-decimal pl-6 mb-5 space-y-2",
	"li":         "leading-relaxed",
	"blockquote": "border-l-4 border-amber-600 pl-4 italic text-stone-700 my-6",
	"table":      "w-full text-left border-collapse my-6",
	"th":         "border-b-2 border-stone-300 px-3 py-2 font-semibold",
	"td":         "border-b border-stone-200 px-3 py-2",
	"hr":         "my-10 border-stone-200",
	"pre":        "code-block",
	"img":        "rounded-lg my-6 w-full h-auto",
	"a":          "underline decoration-2 underline-offset-4",
}

// Class returns the class attribute value used for tag.
func Class(tag string) string {
	return classes[tag]
}

func open(tag string) string {
	return `<` + tag + ` class="` + classes[tag] + `">`
}

// Markdown returns a templ.Component that renders content as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderMarkdown(&buf, content)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// RenderMarkdown writes the HTML representation of content to buf. Bodies
// authored as HTML are converted to markdown first.
func RenderMarkdown(buf *bytes.Buffer, content string) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if IsHTML(content) {
		converted, err := FromHTML(content)
		if err != nil {
			buf.WriteString(Sanitize(content))
			return
		}
		content = converted
	}

	r := &renderer{buf: buf}
	for _, seg := range segment(strings.Split(content, "\n")) {
		if seg.faq != nil {
			r.flushAll()
			r.renderFAQ(seg.faq)
			continue
		}
		r.renderLines(seg.lines)
	}
	r.flushAll()
}

// renderer holds the open-block state while walking lines.
type renderer struct {
	buf        *bytes.Buffer
	imageCount int

	inList          bool
	inOrderedList   bool
	inPara          bool
	inQuote         bool
	inCode          bool
	codeLang        bool
	inTable         bool
	tableHeaderDone bool
}

func (r *renderer) flushCode() {
	if r.inCode {
		r.buf.WriteString("</code></pre>")
		if r.codeLang {
			r.buf.WriteString("</div>")
			r.codeLang = false
		}
		r.inCode = false
	}
}

func (r *renderer) flushPara() {
	if r.inPara {
		r.buf.WriteString("</p>")
		r.inPara = false
	}
}

func (r *renderer) flushQuote() {
	if r.inQuote {
		r.buf.WriteString("</blockquote>")
		r.inQuote = false
	}
}

func (r *renderer) flushList() {
	if r.inList {
		r.buf.WriteString("</ul>")
		r.inList = false
	}
}

func (r *renderer) flushOrderedList() {
	if r.inOrderedList {
		r.buf.WriteString("</ol>")
		r.inOrderedList = false
	}
}

func (r *renderer) flushTable() {
	if r.inTable {
		if r.tableHeaderDone {
			r.buf.WriteString("</tbody>")
		}
		r.buf.WriteString("</table>")
		r.inTable = false
		r.tableHeaderDone = false
	}
}

// flushBlocks closes every open block except code.
func (r *renderer) flushBlocks() {
	r.flushPara()
	r.flushList()
	r.flushOrderedList()
	r.flushQuote()
	r.flushTable()
}

func (r *renderer) flushAll() {
	r.flushBlocks()
	r.flushCode()
}

func (r *renderer) inline(s string) string {
	return FormatInline(s, &r.imageCount)
}

func (r *renderer) heading(level, text string) {
	r.flushBlocks()
	r.buf.WriteString(open("h" + level))
	r.buf.WriteString(r.inline(strings.TrimSpace(text)))
	r.buf.WriteString("</h" + level + ">")
}

func (r *renderer) renderLines(lines []string) {
	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			if r.inCode {
				r.flushCode()
				continue
			}
			r.flushBlocks()
			lang := strings.TrimSpace(line[3:])
			if lang != "" {
				r.codeLang = true
				escapedLang := html.EscapeString(lang)
				r.buf.WriteString(`<div class="code-block-wrapper"><span class="code-lang code-lang-` + escapedLang + `">` + escapedLang + `</span>`)
				r.buf.WriteString(open("pre") + `<code class="language-` + escapedLang + `">`)
			} else {
				r.buf.WriteString(open("pre") + "<code>")
			}
			r.inCode = true
			continue
		}

		if r.inCode {
			r.buf.WriteString(html.EscapeString(line))
			r.buf.WriteString("\n")
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			r.flushBlocks()
			continue
		}

		switch {
		case strings.HasPrefix(line, "---"):
			r.flushBlocks()
			r.buf.WriteString(`<hr class="` + classes["hr"] + `"/>`)
		case strings.HasPrefix(line, "# "):
			r.heading("1", line[2:])
		case strings.HasPrefix(line, "## "):
			r.heading("2", line[3:])
		case strings.HasPrefix(line, "### "):
			r.heading("3", line[4:])
		case strings.HasPrefix(trimmed, "<"):
			r.flushBlocks()
			r.buf.WriteString(Sanitize(trimmed))
		case strings.HasPrefix(line, "|"):
			r.tableRow(line)
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			if !r.inList {
				r.flushBlocks()
				r.buf.WriteString(open("ul"))
				r.inList = true
			}
			r.buf.WriteString(open("li"))
			r.buf.WriteString(r.inline(strings.TrimSpace(line[2:])))
			r.buf.WriteString("</li>")
		case reOrderedList.MatchString(line):
			if !r.inOrderedList {
				r.flushBlocks()
				r.buf.WriteString(open("ol"))
				r.inOrderedList = true
			}
			r.buf.WriteString(open("li"))
			r.buf.WriteString(r.inline(strings.TrimSpace(reOrderedList.ReplaceAllString(line, ""))))
			r.buf.WriteString("</li>")
		case strings.HasPrefix(line, "> "), line == ">":
			if !r.inQuote {
				r.flushBlocks()
				r.buf.WriteString(open("blockquote"))
				r.inQuote = true
			}
			r.buf.WriteString(r.inline(strings.TrimSpace(strings.TrimPrefix(line, ">"))))
		default:
			if !r.inPara {
				r.flushBlocks()
				r.buf.WriteString(open("p"))
				r.inPara = true
			} else {
				r.buf.WriteString(" ")
			}
			r.buf.WriteString(r.inline(trimmed) + "\n")
		}
	}
}

func (r *renderer) tableRow(line string) {
	if !r.inTable {
		r.flushBlocks()
		r.buf.WriteString(open("table"))
		r.inTable = true
		// First row is the header
		r.buf.WriteString("<thead><tr>")
		for _, cell := range parseTableCells(line) {
			r.buf.WriteString(open("th"))
			r.buf.WriteString(r.inline(cell))
			r.buf.WriteString("</th>")
		}
		r.buf.WriteString("</tr></thead>")
		return
	}
	if !r.tableHeaderDone {
		r.buf.WriteString("<tbody>")
		r.tableHeaderDone = true
	}
	if isTableSeparator(line) {
		return
	}
	r.buf.WriteString("<tr>")
	for _, cell := range parseTableCells(line) {
		r.buf.WriteString(open("td"))
		r.buf.WriteString(r.inline(cell))
		r.buf.WriteString("</td>")
	}
	r.buf.WriteString("</tr>")
}

func parseTableCells(line string) []string {
	line = strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(line, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func isTableSeparator(line string) bool {
	line = strings.Trim(strings.TrimSpace(line), "|")
	for _, cell := range strings.Split(line, "|") {
		cleaned := strings.NewReplacer("-", "", ":", "").Replace(strings.TrimSpace(cell))
		if cleaned != "" {
			return false
		}
	}
	return true
}
