// Package content turns blog_posts rows into render-ready posts. It ties the
// slug normalizer, cover image resolver and content cleaner together and is
// the only package the web layer asks for posts.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/eringen/remodelpress/clean"
	"github.com/eringen/remodelpress/coverimage"
	"github.com/eringen/remodelpress/slug"
	"github.com/eringen/remodelpress/store"
)

// TipTag marks a post as a tip. Tips are routed under /tips.
const TipTag = coverimage.TipTag

// DefaultPageSize is used when a caller asks for a page size below one.
const DefaultPageSize = 9

// ErrNotFound is returned when a slug lookup matches nothing in scope.
var ErrNotFound = errors.New("content: post not found")

// StoreError wraps a failed store read with the operation and its inputs.
type StoreError struct {
	Op     string
	Params map[string]any
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("content: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store is the read surface the resolver needs from the content database.
type Store interface {
	Find(ctx context.Context, q store.Query) ([]store.Post, error)
	Count(ctx context.Context, q store.Query) (int, error)
}

// Post is a resolved blog post ready for rendering.
type Post struct {
	ID          string
	Title       string
	Slug        string
	Content     string
	Tags        string
	ImageURL    string
	ImageKind   coverimage.Kind
	Description string
	CreatedAt   time.Time
	PublishedAt time.Time
	UpdatedAt   time.Time
	IsTip       bool
	Path        string
}

// Date is the date shown to readers: published when set, else created.
func (p Post) Date() time.Time {
	if !p.PublishedAt.IsZero() {
		return p.PublishedAt
	}
	return p.CreatedAt
}

// LastModified is the updated date, falling back to Date.
func (p Post) LastModified() time.Time {
	if !p.UpdatedAt.IsZero() {
		return p.UpdatedAt
	}
	return p.Date()
}

// Page is one page of a tag listing.
type Page struct {
	Posts      []Post
	Number     int
	TotalPages int
	Total      int
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// PathFor returns the public path of a post with the given slug and tags.
func PathFor(postSlug, tags string) string {
	if tags == TipTag {
		return "/tips/" + url.PathEscape(postSlug)
	}
	return "/blog/posts/" + url.PathEscape(postSlug)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for store failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithImages replaces the cover image resolver.
func WithImages(images *coverimage.Resolver) Option {
	return func(r *Resolver) { r.images = images }
}

// Resolver fetches rows from a Store and assembles Posts.
type Resolver struct {
	store  Store
	images *coverimage.Resolver
	logger *slog.Logger
}

// New returns a Resolver reading from s.
func New(s Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:  s,
		images: coverimage.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FetchBySlug returns the newest post whose slug matches raw. With
// scopeToTips only tips are considered; otherwise tips are excluded. When the
// normalized slug matches nothing, a relaxed form is tried under the same
// scope.
func (r *Resolver) FetchBySlug(ctx context.Context, raw string, scopeToTips bool) (Post, error) {
	const op = "fetch_by_slug"
	normalized := slug.Normalize(raw)
	if normalized == "" {
		return Post{}, ErrNotFound
	}

	candidates := []string{normalized}
	if relaxed := slug.Relaxed(raw); relaxed != "" && relaxed != normalized {
		candidates = append(candidates, relaxed)
	}

	for _, candidate := range candidates {
		q := scope(scopeToTips)
		q.Slug = candidate
		q.Limit = 1
		rows, err := r.store.Find(ctx, q)
		if err != nil {
			return Post{}, r.fail(ctx, op, map[string]any{
				"slug": candidate, "raw": raw, "tips": scopeToTips,
			}, err)
		}
		if len(rows) == 0 {
			continue
		}
		row := rows[0]
		if scopeToTips && row.Tags != TipTag {
			return Post{}, ErrNotFound
		}
		return r.assemble(row), nil
	}
	return Post{}, ErrNotFound
}

// FetchByTag returns one page of posts matching tag, newest first. The tip
// tag matches exactly; any other tag matches as a case-insensitive
// substring. An empty tag lists everything.
func (r *Resolver) FetchByTag(ctx context.Context, tag string, page, pageSize int) (Page, error) {
	return r.fetchPage(ctx, "fetch_by_tag", tagQuery(tag), tag, page, pageSize)
}

// FetchBlog is FetchByTag with tips removed, for the /blog listing.
func (r *Resolver) FetchBlog(ctx context.Context, tag string, page, pageSize int) (Page, error) {
	q := tagQuery(tag)
	q.ExcludeTag = TipTag
	return r.fetchPage(ctx, "fetch_blog", q, tag, page, pageSize)
}

func (r *Resolver) fetchPage(ctx context.Context, op string, q store.Query, tag string, page, pageSize int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	params := map[string]any{"tag": tag, "page": page, "page_size": pageSize}

	total, err := r.store.Count(ctx, q)
	if err != nil {
		return Page{}, r.fail(ctx, op, params, err)
	}

	q.Limit = pageSize
	q.Offset = (page - 1) * pageSize
	rows, err := r.store.Find(ctx, q)
	if err != nil {
		return Page{}, r.fail(ctx, op, params, err)
	}

	return Page{
		Posts:      r.assembleAll(rows),
		Number:     page,
		TotalPages: (total + pageSize - 1) / pageSize,
		Total:      total,
	}, nil
}

// FetchAll returns every post, or those matching any of tags, newest first.
func (r *Resolver) FetchAll(ctx context.Context, tags ...string) ([]Post, error) {
	var q store.Query
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			q.Tags = append(q.Tags, tagMatch(t))
		}
	}
	rows, err := r.store.Find(ctx, q)
	if err != nil {
		return nil, r.fail(ctx, "fetch_all", map[string]any{"tags": tags}, err)
	}
	return r.assembleAll(rows), nil
}

// Latest returns the n newest blog posts, tips excluded.
func (r *Resolver) Latest(ctx context.Context, n int) ([]Post, error) {
	if n < 1 {
		return nil, nil
	}
	rows, err := r.store.Find(ctx, store.Query{ExcludeTag: TipTag, Limit: n})
	if err != nil {
		return nil, r.fail(ctx, "latest", map[string]any{"n": n}, err)
	}
	return r.assembleAll(rows), nil
}

func (r *Resolver) fail(ctx context.Context, op string, params map[string]any, err error) error {
	attrs := []any{slog.String("op", op), slog.Any("error", err)}
	for k, v := range params {
		attrs = append(attrs, slog.Any(k, v))
	}
	r.logger.ErrorContext(ctx, "content store read failed", attrs...)
	return &StoreError{Op: op, Params: params, Err: err}
}

func scope(tips bool) store.Query {
	if tips {
		return store.Query{Tags: []store.TagMatch{{Value: TipTag, Exact: true}}}
	}
	return store.Query{ExcludeTag: TipTag}
}

func tagQuery(tag string) store.Query {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return store.Query{}
	}
	return store.Query{Tags: []store.TagMatch{tagMatch(tag)}}
}

func tagMatch(tag string) store.TagMatch {
	return store.TagMatch{Value: tag, Exact: tag == TipTag}
}

func (r *Resolver) assembleAll(rows []store.Post) []Post {
	posts := make([]Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, r.assemble(row))
	}
	return posts
}

// assemble resolves the cover image from the raw body, then cleans it.
func (r *Resolver) assemble(row store.Post) Post {
	img := r.images.ResolveWithExplicit(row.ImageURL, row.Content, row.Tags)
	body := clean.Clean(row.Content)
	return Post{
		ID:          row.ID,
		Title:       row.Title,
		Slug:        row.Slug,
		Content:     body,
		Tags:        row.Tags,
		ImageURL:    img.URL,
		ImageKind:   img.Kind,
		Description: Describe(row.Description, row.Excerpt, body),
		CreatedAt:   row.CreatedAt,
		PublishedAt: row.PublishedAt,
		UpdatedAt:   row.UpdatedAt,
		IsTip:       row.Tags == TipTag,
		Path:        PathFor(row.Slug, row.Tags),
	}
}
