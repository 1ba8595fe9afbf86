// Package sitemap builds the XML sitemap listing static pages and every
// published post.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eringen/remodelpress/content"
)

// Namespace is the sitemaps.org schema namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URLSet is the root sitemap element.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// URL is one <url> entry.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// StaticRoute is a page that exists independently of the posts table.
type StaticRoute struct {
	Path       string
	ChangeFreq string
	Priority   string
}

// StaticRoutes are always listed first.
var StaticRoutes = []StaticRoute{
	{Path: "/", ChangeFreq: "daily", Priority: "1.0"},
	{Path: "/blog", ChangeFreq: "daily", Priority: "0.9"},
	{Path: "/tips", ChangeFreq: "weekly", Priority: "0.8"},
}

const (
	postChangeFreq = "monthly"
	postPriority   = "0.7"
	dateLayout     = "2006-01-02"
)

// Build returns the sitemap for baseURL. Posts without a slug are skipped.
func Build(baseURL string, statics []StaticRoute, posts []content.Post) URLSet {
	set := URLSet{XMLNS: Namespace}
	for _, s := range statics {
		set.URLs = append(set.URLs, URL{
			Loc:        Join(baseURL, s.Path),
			ChangeFreq: s.ChangeFreq,
			Priority:   s.Priority,
		})
	}
	for _, p := range posts {
		if strings.TrimSpace(p.Slug) == "" {
			continue
		}
		u := URL{
			Loc:        Join(baseURL, p.Path),
			ChangeFreq: postChangeFreq,
			Priority:   postPriority,
		}
		if t := p.LastModified(); !t.IsZero() {
			u.LastMod = t.UTC().Format(dateLayout)
		}
		set.URLs = append(set.URLs, u)
	}
	return set
}

// Encode writes set as an XML document.
func Encode(w io.Writer, set URLSet) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteFile writes set to path through a temporary file in the same
// directory, so readers never see a partial sitemap.
func WriteFile(path string, set URLSet) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".sitemap-*.xml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, set); err != nil {
		tmp.Close()
		return fmt.Errorf("sitemap: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Join appends an escaped site-relative path to base.
func Join(base, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(base, "/") + path
}
