package remodelpress

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/eringen/remodelpress/content"
)

// AbsoluteURL resolves a site-relative path against base. Absolute URLs are
// returned unchanged.
func AbsoluteURL(base, path string) string {
	if path == "" {
		return base
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(base, "/") + path
}

// RelatedPosts drops current from posts and keeps at most n.
func RelatedPosts(current content.Post, posts []content.Post, n int) []content.Post {
	related := make([]content.Post, 0, n)
	for _, p := range posts {
		if len(related) == n {
			break
		}
		if p.ID == current.ID || p.Slug == current.Slug {
			continue
		}
		related = append(related, p)
	}
	return related
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         AbsoluteURL(cfg.URL, "/"),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Author,
		}
	}
	return marshalJSONLD(data)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post content.Post, cfg SiteConfig) string {
	postURL := AbsoluteURL(cfg.URL, post.Path)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.Description,
		"image":         AbsoluteURL(cfg.URL, post.ImageURL),
		"datePublished": post.Date().Format(time.RFC3339),
		"dateModified":  post.LastModified().Format(time.RFC3339),
		"url":           postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if post.Tags != "" {
		data["keywords"] = post.Tags
	}
	return marshalJSONLD(data)
}

func marshalJSONLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
