package markdown

import (
	"regexp"
	"strings"
)

var (
	reFAQHeading       = regexp.MustCompile(`(?i)^(#{2,3})\s+(faqs?|frequently asked questions)\s*:?\s*$`)
	reAnyHeading       = regexp.MustCompile(`^#{1,3}\s`)
	reQuestionHeading  = regexp.MustCompile(`^###\s+(.+\?)$`)
	reQuestionBold     = regexp.MustCompile(`^\*\*(?:Q[:.]\s*)?(.+\?)\*\*$`)
	reQuestionPrefixed = regexp.MustCompile(`^Q[:.]\s*(.+\?)$`)
	reAnswerPrefix     = regexp.MustCompile(`^A[:.]\s*`)
)

type faqItem struct {
	Question string
	Answer   []string
}

type faqBlock struct {
	Level string
	Title string
	Intro []string
	Items []faqItem
}

// section is either a run of ordinary lines or one FAQ block.
type section struct {
	lines []string
	faq   *faqBlock
}

// segment splits lines around well-formed FAQ blocks. A FAQ heading whose
// block does not end in a blank line (or the end of input) stays in the
// ordinary lines and renders as plain markdown.
func segment(lines []string) []section {
	var out []section
	start, inCode := 0, false
	for i := 0; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "```") {
			inCode = !inCode
			continue
		}
		if inCode || !reFAQHeading.MatchString(strings.TrimSpace(lines[i])) {
			continue
		}
		block, end, ok := parseFAQ(lines, i)
		if !ok {
			continue
		}
		if i > start {
			out = append(out, section{lines: lines[start:i]})
		}
		out = append(out, section{faq: block})
		start = end
		i = end - 1
	}
	if start < len(lines) {
		out = append(out, section{lines: lines[start:]})
	}
	return out
}

func isQuestionHeading(line string) bool {
	return reQuestionHeading.MatchString(line)
}

// question reports whether line opens a new FAQ item. A bare line ending in
// "?" only counts at the start of a paragraph.
func question(line string, paragraphStart bool) (string, bool) {
	for _, re := range []*regexp.Regexp{reQuestionHeading, reQuestionBold, reQuestionPrefixed} {
		if m := re.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	if paragraphStart && strings.HasSuffix(line, "?") && !strings.HasPrefix(line, "#") {
		return line, true
	}
	return "", false
}

func parseFAQ(lines []string, at int) (*faqBlock, int, bool) {
	m := reFAQHeading.FindStringSubmatch(strings.TrimSpace(lines[at]))
	end := len(lines)
	for j := at + 1; j < len(lines); j++ {
		t := strings.TrimSpace(lines[j])
		if strings.HasPrefix(lines[j], "```") {
			return nil, 0, false
		}
		if reAnyHeading.MatchString(t) && !isQuestionHeading(t) {
			end = j
			break
		}
	}
	if end < len(lines) && strings.TrimSpace(lines[end-1]) != "" {
		return nil, 0, false
	}

	block := &faqBlock{Level: m[1], Title: m[2]}
	var cur *faqItem
	paragraphStart := true
	for _, line := range lines[at+1 : end] {
		t := strings.TrimSpace(line)
		if t == "" {
			paragraphStart = true
			if cur != nil {
				cur.Answer = append(cur.Answer, "")
			}
			continue
		}
		if q, ok := question(t, paragraphStart); ok {
			block.Items = append(block.Items, faqItem{Question: q})
			cur = &block.Items[len(block.Items)-1]
			paragraphStart = true
			continue
		}
		paragraphStart = false
		if cur == nil {
			block.Intro = append(block.Intro, line)
			continue
		}
		cur.Answer = append(cur.Answer, reAnswerPrefix.ReplaceAllString(t, ""))
	}
	if len(block.Items) == 0 {
		return nil, 0, false
	}
	return block, end, true
}

func (r *renderer) renderFAQ(b *faqBlock) {
	level := "h2"
	if len(b.Level) == 3 {
		level = "h3"
	}
	r.buf.WriteString(`<section class="faq" itemscope itemtype="https://schema.org/FAQPage">`)
	r.buf.WriteString(open(level) + r.inline(b.Title) + "</" + level + ">")
	r.sub(b.Intro)
	for _, item := range b.Items {
		r.buf.WriteString(`<div class="faq-item" itemscope itemprop="mainEntity" itemtype="https://schema.org/Question">`)
		r.buf.WriteString(`<h3 class="faq-question" itemprop="name">` + r.inline(item.Question) + `</h3>`)
		r.buf.WriteString(`<div class="faq-answer" itemscope itemprop="acceptedAnswer" itemtype="https://schema.org/Answer"><div itemprop="text">`)
		r.sub(item.Answer)
		r.buf.WriteString(`</div></div></div>`)
	}
	r.buf.WriteString(`</section>`)
}

// sub renders lines as a nested document sharing the image counter.
func (r *renderer) sub(lines []string) {
	if len(lines) == 0 {
		return
	}
	nested := &renderer{buf: r.buf, imageCount: r.imageCount}
	nested.renderLines(lines)
	nested.flushAll()
	r.imageCount = nested.imageCount
}
