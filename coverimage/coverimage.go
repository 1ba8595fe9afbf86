// Package coverimage picks the image shown with a post: an explicit URL when
// one is set, otherwise the first image reference found in the body, otherwise
// a default chosen by tag.
package coverimage

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Kind records where a resolved image came from.
type Kind string

const (
	KindExplicit Kind = "explicit"
	KindMarkdown Kind = "markdown"
	KindHTML     Kind = "html"
	KindQuoted   Kind = "quoted"
	KindDefault  Kind = "default"
)

// TipTag marks posts that belong to the tips section.
const TipTag = "Jerome"

// Result is a resolved image URL and the rule that produced it.
type Result struct {
	URL  string
	Kind Kind
}

// Defaults holds the fallback image for each content family.
type Defaults struct {
	Tip      string
	Kitchen  string
	Bathroom string
	Generic  string
}

// DefaultImages are the site-relative fallbacks served from /public.
var DefaultImages = Defaults{
	Tip:      "/public/images/defaults/tips.jpg",
	Kitchen:  "/public/images/defaults/kitchen-remodel.jpg",
	Bathroom: "/public/images/defaults/bathroom-remodel.jpg",
	Generic:  "/public/images/defaults/home-remodel.jpg",
}

// For returns the default image for tag.
func (d Defaults) For(tag string) string {
	if tag == TipTag {
		return d.Tip
	}
	lower := strings.ToLower(tag)
	switch {
	case strings.Contains(lower, "kitchen"):
		return d.Kitchen
	case strings.Contains(lower, "bathroom"):
		return d.Bathroom
	default:
		return d.Generic
	}
}

// Rule finds a candidate image reference in post content.
type Rule struct {
	Kind Kind
	Find func(content string) (string, bool)
}

var (
	reMarkdownImage = regexp.MustCompile(`!\[[^\]]*\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)
	reQuotedPath    = regexp.MustCompile(`(?i)["'](/images/[^"'\s]+\.(?:jpe?g|png|gif|webp))["']`)
	reDoubleScheme  = regexp.MustCompile(`(?i)^(https?://)(?:https?://)+`)
)

// Rules are evaluated in order; the first match wins.
var Rules = []Rule{
	{Kind: KindMarkdown, Find: findMarkdownImage},
	{Kind: KindHTML, Find: findHTMLImage},
	{Kind: KindQuoted, Find: findQuotedPath},
}

func findMarkdownImage(content string) (string, bool) {
	m := reMarkdownImage.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func findHTMLImage(content string) (string, bool) {
	if !strings.Contains(strings.ToLower(content), "<img") {
		return "", false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", false
	}
	src, ok := doc.Find("img[src]").First().Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		return "", false
	}
	return src, true
}

func findQuotedPath(content string) (string, bool) {
	m := reQuotedPath.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Resolver applies Rules and falls back to Defaults.
type Resolver struct {
	Rules    []Rule
	Defaults Defaults
}

// New returns a Resolver with the package rules and default images.
func New() *Resolver {
	return &Resolver{Rules: Rules, Defaults: DefaultImages}
}

// Resolve finds an image in content, falling back to the default for tag.
func (r *Resolver) Resolve(content, tag string) Result {
	for _, rule := range r.Rules {
		raw, ok := rule.Find(content)
		if !ok {
			continue
		}
		repaired, err := Repair(raw)
		if err != nil {
			// Malformed references fall back to the default image.
			break
		}
		return Result{URL: repaired, Kind: rule.Kind}
	}
	return Result{URL: r.Defaults.For(tag), Kind: KindDefault}
}

// ResolveWithExplicit prefers explicit when it repairs to a valid URL.
func (r *Resolver) ResolveWithExplicit(explicit, content, tag string) Result {
	if strings.TrimSpace(explicit) != "" {
		if repaired, err := Repair(explicit); err == nil {
			return Result{URL: repaired, Kind: KindExplicit}
		}
	}
	return r.Resolve(content, tag)
}

// Resolve uses the package rules and default images.
func Resolve(content, tag string) Result {
	return New().Resolve(content, tag)
}

// ErrMalformedURL is returned by Repair for values that cannot be made into a URL.
var ErrMalformedURL = errors.New("coverimage: malformed url")

// Repair turns an extracted or explicit image reference into an absolute or
// site-relative URL.
func Repair(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", ErrMalformedURL
	}
	v = reDoubleScheme.ReplaceAllString(v, "$1")

	lower := strings.ToLower(v)
	switch {
	case strings.HasPrefix(v, "//"):
		v = "https:" + v
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
	case strings.HasPrefix(v, "/"):
		if _, err := url.Parse(v); err != nil {
			return "", ErrMalformedURL
		}
		return v, nil
	default:
		v = "https://" + v
	}

	u, err := url.Parse(v)
	if err != nil || u.Host == "" {
		return "", ErrMalformedURL
	}
	return v, nil
}
