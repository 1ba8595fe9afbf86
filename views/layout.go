// Package views holds the default page components for remodelpress. Sites
// with their own markup pass their own ViewFuncs instead.
package views

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/remodelpress"
	"github.com/eringen/remodelpress/content"
)

// New returns the default views.
func New() remodelpress.ViewFuncs {
	return remodelpress.ViewFuncs{
		Home:        Home,
		Listing:     Listing,
		Post:        Post,
		NotFound:    NotFound,
		Unavailable: Unavailable,
		ServerError: ServerError,
	}
}

var esc = templ.EscapeString[string]

// page collects markup in a buffer so a component writes all or nothing.
type page struct {
	bytes.Buffer
	ctx context.Context
	err error
}

func (p *page) f(format string, args ...any) {
	fmt.Fprintf(&p.Buffer, format, args...)
}

func (p *page) component(c templ.Component) {
	if p.err == nil {
		p.err = c.Render(p.ctx, &p.Buffer)
	}
}

type shell struct {
	Site   remodelpress.SiteConfig
	Meta   remodelpress.PageMeta
	Reader remodelpress.Reader
	JSONLD string
}

func layout(s shell, body func(p *page)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{ctx: ctx}
		p.f(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/>`)
		p.f(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		p.f(`<title>%s</title>`, esc(s.Meta.Title))
		if s.Meta.Description != "" {
			p.f(`<meta name="description" content="%s"/>`, esc(s.Meta.Description))
			p.f(`<meta property="og:description" content="%s"/>`, esc(s.Meta.Description))
		}
		if s.Meta.URL != "" {
			p.f(`<link rel="canonical" href="%s"/><meta property="og:url" content="%s"/>`, esc(s.Meta.URL), esc(s.Meta.URL))
		}
		p.f(`<meta property="og:title" content="%s"/><meta property="og:type" content="%s"/>`, esc(s.Meta.Title), esc(s.Meta.OGType))
		if s.Meta.Image != "" {
			p.f(`<meta property="og:image" content="%s"/>`, esc(s.Meta.Image))
		}
		p.f(`<link rel="alternate" type="application/rss+xml" title="%s" href="/feed.xml"/>`, esc(s.Site.Name))
		p.f(`<link rel="stylesheet" href="/public/styles.css"/>`)
		if s.JSONLD != "" {
			// json.Marshal escapes <, > and & so the payload cannot close the tag.
			p.f(`<script type="application/ld+json">%s</script>`, s.JSONLD)
		}
		p.f(`</head><body class="bg-stone-50 text-stone-900">`)
		p.f(`<header class="max-w-5xl mx-auto px-4 py-6 flex justify-between"><a href="/" class="font-bold text-xl">%s</a>`, esc(s.Site.Name))
		p.f(`<nav class="space-x-6"><a href="/blog">Blog</a><a href="/tips">Tips</a></nav></header>`)
		p.f(`<main class="max-w-5xl mx-auto px-4">`)
		body(p)
		p.f(`</main>`)
		if s.Reader.NewsletterEnabled && !s.Reader.Registered {
			signupForm(p, s.Reader.CSRFToken)
		}
		p.f(`<footer class="max-w-5xl mx-auto px-4 py-10 text-sm text-stone-500">&copy; %d %s</footer>`, time.Now().Year(), esc(s.Site.Name))
		p.f(`</body></html>`)
		if p.err != nil {
			return p.err
		}
		_, err := w.Write(p.Bytes())
		return err
	})
}

func signupForm(p *page, csrf string) {
	p.f(`<section id="newsletter" class="max-w-5xl mx-auto px-4 py-10 border-t border-stone-200">`)
	p.f(`<h2 class="text-xl font-semibold mb-3">Get remodeling ideas in your inbox</h2>`)
	p.f(`<form method="post" action="/newsletter" class="flex flex-wrap gap-3" data-newsletter>`)
	p.f(`<input type="hidden" name="_csrf" value="%s"/>`, esc(csrf))
	p.f(`<input type="hidden" name="source" value="website"/>`)
	p.f(`<input type="text" name="first_name" placeholder="First name" autocomplete="given-name"/>`)
	p.f(`<input type="text" name="last_name" placeholder="Last name" autocomplete="family-name"/>`)
	p.f(`<input type="email" name="email" placeholder="you@example.com" required autocomplete="email"/>`)
	p.f(`<button type="submit">Subscribe</button><p data-newsletter-status role="status"></p></form>`)
	p.f(`<script>document.querySelector("[data-newsletter]").addEventListener("submit",async e=>{e.preventDefault();`)
	p.f(`const f=e.target,s=f.querySelector("[data-newsletter-status]");`)
	p.f(`const r=await fetch(f.action,{method:"POST",body:new FormData(f),headers:{"Accept":"application/json"}});`)
	p.f(`const j=await r.json().catch(()=>({}));s.textContent=r.ok?"Thanks for subscribing!":(j.error||"Something went wrong.");`)
	p.f(`if(r.ok)f.reset();});</script></section>`)
}

func card(p *page, post content.Post) {
	p.f(`<article class="rounded-lg overflow-hidden bg-white shadow-sm">`)
	p.f(`<a href="%s"><img src="%s" alt="%s" loading="lazy" decoding="async" class="w-full h-48 object-cover"/></a>`,
		esc(post.Path), esc(post.ImageURL), esc(post.Title))
	p.f(`<div class="p-4"><time datetime="%s" class="text-sm text-stone-500">%s</time>`,
		post.Date().Format("2006-01-02"), post.Date().Format("January 2, 2006"))
	p.f(`<h3 class="text-lg font-semibold mt-1"><a href="%s">%s</a></h3>`, esc(post.Path), esc(post.Title))
	if post.Description != "" {
		p.f(`<p class="mt-2 text-stone-700">%s</p>`, esc(post.Description))
	}
	p.f(`</div></article>`)
}

func grid(p *page, posts []content.Post) {
	p.f(`<div class="grid gap-6 sm:grid-cols-2 lg:grid-cols-3">`)
	for _, post := range posts {
		card(p, post)
	}
	p.f(`</div>`)
}
