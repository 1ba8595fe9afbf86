package views

import (
	"net/url"

	"github.com/a-h/templ"

	"github.com/eringen/remodelpress"
	"github.com/eringen/remodelpress/markdown"
)

// Home renders the landing page.
func Home(d remodelpress.HomeData) templ.Component {
	return layout(shell{Site: d.Site, Meta: d.Meta, Reader: d.Reader, JSONLD: d.JSONLD}, func(p *page) {
		p.f(`<section class="py-10"><h1 class="text-4xl font-bold">%s</h1>`, esc(d.Site.Name))
		if d.Site.Description != "" {
			p.f(`<p class="mt-3 text-lg text-stone-700">%s</p>`, esc(d.Site.Description))
		}
		p.f(`</section>`)
		if len(d.Latest) > 0 {
			p.f(`<section class="mb-12"><h2 class="text-2xl font-semibold mb-6">Latest articles</h2>`)
			grid(p, d.Latest)
			p.f(`<p class="mt-6"><a href="/blog" class="underline">All articles</a></p></section>`)
		}
		if len(d.Tips) > 0 {
			p.f(`<section class="mb-12"><h2 class="text-2xl font-semibold mb-6">Quick tips</h2>`)
			grid(p, d.Tips)
			p.f(`<p class="mt-6"><a href="/tips" class="underline">All tips</a></p></section>`)
		}
	})
}

// Listing renders a paginated blog or tips listing.
func Listing(d remodelpress.ListData) templ.Component {
	return layout(shell{Site: d.Site, Meta: d.Meta, Reader: d.Reader}, func(p *page) {
		p.f(`<h1 class="text-3xl font-bold py-8">%s</h1>`, esc(d.Heading))
		if len(d.Page.Posts) == 0 {
			p.f(`<p class="text-stone-600">No posts yet. Check back soon.</p>`)
			return
		}
		grid(p, d.Page.Posts)
		if d.PrevURL == "" && d.NextURL == "" {
			return
		}
		p.f(`<nav class="flex justify-between py-10" aria-label="Pagination">`)
		if d.PrevURL != "" {
			p.f(`<a rel="prev" href="%s">Newer posts</a>`, esc(d.PrevURL))
		} else {
			p.f(`<span></span>`)
		}
		p.f(`<span class="text-stone-500">Page %d of %d</span>`, d.Page.Number, d.Page.TotalPages)
		if d.NextURL != "" {
			p.f(`<a rel="next" href="%s">Older posts</a>`, esc(d.NextURL))
		} else {
			p.f(`<span></span>`)
		}
		p.f(`</nav>`)
	})
}

// Post renders a single article or tip.
func Post(d remodelpress.PostData) templ.Component {
	return layout(shell{Site: d.Site, Meta: d.Meta, Reader: d.Reader, JSONLD: d.JSONLD}, func(p *page) {
		post := d.Post
		p.f(`<article class="max-w-3xl mx-auto py-8">`)
		p.f(`<h1 class="text-4xl font-bold tracking-tight">%s</h1>`, esc(post.Title))
		p.f(`<p class="mt-2 text-stone-500"><time datetime="%s">%s</time>`,
			post.Date().Format("2006-01-02"), post.Date().Format("January 2, 2006"))
		if post.Tags != "" && !post.IsTip {
			p.f(` in <a href="/blog?tag=%s" class="underline">%s</a>`, esc(url.QueryEscape(post.Tags)), esc(post.Tags))
		}
		p.f(`</p>`)
		p.f(`<img src="%s" alt="%s" fetchpriority="high" decoding="async" class="rounded-lg my-8 w-full h-auto"/>`,
			esc(post.ImageURL), esc(post.Title))
		p.component(markdown.Markdown(post.Content))
		p.f(`</article>`)
		if len(d.Related) > 0 {
			p.f(`<section class="py-10 border-t border-stone-200"><h2 class="text-2xl font-semibold mb-6">Keep reading</h2>`)
			grid(p, d.Related)
			p.f(`</section>`)
		}
	})
}

// NotFound renders the 404 page.
func NotFound(site remodelpress.SiteConfig) templ.Component {
	return message(site, "Page not found", "We could not find that page. It may have moved.")
}

// Unavailable renders the page shown when the content store cannot be read.
func Unavailable(site remodelpress.SiteConfig) templ.Component {
	return message(site, "Temporarily unavailable", "Our articles are briefly unavailable. Please try again in a few minutes.")
}

// ServerError renders the 500 page.
func ServerError(site remodelpress.SiteConfig) templ.Component {
	return message(site, "Something went wrong", "An unexpected error occurred. Please try again.")
}

func message(site remodelpress.SiteConfig, title, body string) templ.Component {
	meta := remodelpress.PageMeta{Title: title + " | " + site.Name, OGType: "website"}
	return layout(shell{Site: site, Meta: meta}, func(p *page) {
		p.f(`<section class="py-20 text-center"><h1 class="text-3xl font-bold">%s</h1>`, esc(title))
		p.f(`<p class="mt-4 text-stone-600">%s</p><p class="mt-8"><a href="/" class="underline">Back to home</a></p></section>`, esc(body))
	})
}
