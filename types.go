package remodelpress

import "github.com/eringen/remodelpress/content"

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image, absolute
}

// Reader is the per-visitor state every page template needs.
type Reader struct {
	CSRFToken         string
	Registered        bool
	NewsletterEnabled bool
}

// HomeData is rendered by ViewFuncs.Home.
type HomeData struct {
	Site   SiteConfig
	Meta   PageMeta
	Reader Reader
	Latest []content.Post
	Tips   []content.Post
	JSONLD string
}

// ListData is rendered by ViewFuncs.Listing for /blog and /tips.
type ListData struct {
	Site     SiteConfig
	Meta     PageMeta
	Reader   Reader
	Heading  string
	Tag      string
	BasePath string
	Page     content.Page
	PrevURL  string
	NextURL  string
}

// PostData is rendered by ViewFuncs.Post for both articles and tips.
type PostData struct {
	Site    SiteConfig
	Meta    PageMeta
	Reader  Reader
	Post    content.Post
	Related []content.Post
	JSONLD  string
}
