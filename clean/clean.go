// Package clean strips promotional and editorial boilerplate from post bodies.
package clean

import (
	"regexp"
	"strings"
)

// A section pattern matches from its marker to the next blank line or the end
// of the input. The whole span is replaced by a paragraph break.
const (
	toBlankLine = `[\s\S]*?(?:\n[ \t]*\n|\z)`
	pairEnd     = `[^\n]*(?:\n[ \t]*\n|[ \t\n]*\z)`
)

// Sections are applied in order.
var Sections = []*regexp.Regexp{
	// call-to-action openers
	regexp.MustCompile(`(?im)^[ \t]*(?:\*\*|#{1,6}[ \t]*)?ready to (?:transform|start|begin|upgrade|remodel|update|refresh)\b` + toBlankLine),
	regexp.MustCompile(`(?im)^[ \t]*(?:\*\*|#{1,6}[ \t]*)?(?:contact|call) us (?:today|now)\b` + toBlankLine),
	regexp.MustCompile(`(?im)^[ \t]*(?:\*\*|#{1,6}[ \t]*)?(?:get (?:a|your) free (?:quote|estimate)|schedule (?:a|your) (?:free )?consultation)\b` + toBlankLine),
	// raw editorial notes
	regexp.MustCompile(`(?im)^[ \t]*\[?(?:note to self|editor'?s note|internal note|raw notes?|todo)\]?:` + toBlankLine),
	// boilerplate tag pairs
	regexp.MustCompile(`(?im)^[ \t]*\[cta\][\s\S]*?\[/cta\]` + pairEnd),
	regexp.MustCompile(`(?im)^[ \t]*<!--[ \t]*(?:cta|boilerplate)[ \t]*-->[\s\S]*?<!--[ \t]*/(?:cta|boilerplate)[ \t]*-->` + pairEnd),
}

var (
	reExtraNewlines = regexp.MustCompile(`\n{3,}`)
	reBlankLine     = regexp.MustCompile(`\n[ \t]*\n`)
)

// Clean removes boilerplate sections and duplicate paragraphs from content.
// The result is never longer than content, and Clean(Clean(x)) == Clean(x).
func Clean(content string) string {
	s := strings.ReplaceAll(content, "\r\n", "\n")
	// Removing a span can expose another one, so passes repeat until stable.
	// A pass that changes s always shortens it.
	for {
		next := pass(s)
		if next == s {
			return s
		}
		s = next
	}
}

func pass(s string) string {
	for _, re := range Sections {
		s = re.ReplaceAllString(s, "\n\n")
	}
	s = reExtraNewlines.ReplaceAllString(s, "\n\n")
	return strings.Join(dedupe(Paragraphs(s)), "\n\n")
}

// Paragraphs splits s on blank lines, dropping empty paragraphs.
func Paragraphs(s string) []string {
	var out []string
	for _, p := range reBlankLine.Split(s, -1) {
		p = strings.TrimRight(strings.TrimLeft(p, "\n"), " \t\n")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func dedupe(paras []string) []string {
	seen := make(map[string]struct{}, len(paras))
	out := paras[:0]
	for _, p := range paras {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
