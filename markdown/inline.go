package markdown

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`__(.+?)__`)
	reItalic           = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnderscore = regexp.MustCompile(`_([^_]+)_`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	reLink             = regexp.MustCompile(`\[(.*?)\]\((.*?)\)(\^)?`)
	// ![alt](url), optionally followed by {style} or {style|width|height}
	reImg = regexp.MustCompile(`\!\[(.*?)\]\(([^)\s]*)(?:\s+&#34;[^)]*&#34;)?\)(?:\{([^|}]*?)(?:\|(\d+)\|(\d+))?\})?`)
)

// FormatInline applies inline formatting (images, links, code, bold, italic)
// to s. imageCount tracks images across a document so only the first one is
// fetched eagerly.
func FormatInline(s string, imageCount *int) string {
	escaped := html.EscapeString(s)
	var protected []string
	protect := func(fragment string) string {
		protected = append(protected, fragment)
		return "\x00P" + strconv.Itoa(len(protected)-1) + "\x00"
	}

	escaped = reImg.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reImg.FindStringSubmatch(m)
		src := SafeURL(match[2])
		if src == "" {
			return match[1]
		}
		*imageCount++
		return protect(imageTag(match[1], src, match[3], match[4], match[5], *imageCount))
	})
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := `class="` + classes["a"] + `"`
		if match[3] == "^" {
			attrs += ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `" ` + attrs + `>` + match[1] + `</a>`
	})
	// Inline code is set aside so emphasis never applies inside backticks.
	escaped = reInlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		return protect("<code>" + reInlineCode.FindStringSubmatch(m)[1] + "</code>")
	})
	escaped = ApplyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reBoldUnderscore.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		seg = reItalicUnderscore.ReplaceAllString(seg, "<em>$1</em>")
		return seg
	})
	for i, frag := range protected {
		escaped = strings.Replace(escaped, "\x00P"+strconv.Itoa(i)+"\x00", frag, 1)
	}
	return escaped
}

func imageTag(alt, src, style, width, height string, n int) string {
	var b strings.Builder
	b.WriteString(`<img class="` + classes["img"] + `"`)
	if n == 1 {
		b.WriteString(` fetchpriority="high"`)
	} else {
		b.WriteString(` loading="lazy"`)
	}
	if width != "" && height != "" {
		b.WriteString(` width="` + width + `" height="` + height + `"`)
	}
	b.WriteString(` alt="` + alt + `" src="` + src + `"`)
	if style != "" {
		b.WriteString(` style="` + style + `"`)
	}
	b.WriteString(` decoding="async"/>`)
	return b.String()
}

// ApplyOutsideTags applies fn only to text segments outside HTML tags,
// so that formatting regexes never touch URLs inside href attributes, etc.
func ApplyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// SafeURL validates a URL for use in an HTML attribute and returns it
// escaped, or "" when the scheme is not allowed. Protocol-relative URLs are
// upgraded to https.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "//") {
		val = "https:" + val
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
