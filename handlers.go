package remodelpress

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/remodelpress/content"
	"github.com/eringen/remodelpress/metrics"
	"github.com/eringen/remodelpress/newsletter"
	"github.com/eringen/remodelpress/sitemap"
)

const (
	homeLatest   = 6
	homeTips     = 3
	relatedCount = 3
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	latest, err := a.Content.Latest(ctx, homeLatest)
	if err != nil {
		return err
	}
	tips, err := a.Content.FetchByTag(ctx, content.TipTag, 1, homeTips)
	if err != nil {
		return err
	}
	meta := PageMeta{
		Title:       a.Config.Name,
		Description: a.Config.Description,
		URL:         AbsoluteURL(a.Config.URL, "/"),
		OGType:      "website",
	}
	if len(latest) > 0 {
		meta.Image = AbsoluteURL(a.Config.URL, latest[0].ImageURL)
	}
	return renderPage(c, meta, a.Views.Home(HomeData{
		Site:   a.Config,
		Meta:   meta,
		Reader: a.reader(c),
		Latest: latest,
		Tips:   tips.Posts,
		JSONLD: WebsiteJsonLD(a.Config),
	}))
}

func (a *App) handleBlog(c echo.Context) error {
	tag := strings.TrimSpace(c.QueryParam("tag"))
	page := pageParam(c)
	p, err := a.Content.FetchBlog(c.Request().Context(), tag, page, a.Config.PageSize)
	if err != nil {
		return err
	}
	heading := "Remodeling Blog"
	if tag != "" {
		heading = tag
	}
	return a.renderListing(c, "/blog", heading, tag, p)
}

func (a *App) handleTips(c echo.Context) error {
	p, err := a.Content.FetchByTag(c.Request().Context(), content.TipTag, pageParam(c), a.Config.PageSize)
	if err != nil {
		return err
	}
	return a.renderListing(c, "/tips", "Remodeling Tips", "", p)
}

func (a *App) renderListing(c echo.Context, basePath, heading, tag string, p content.Page) error {
	if p.Number > 1 && p.Number > p.TotalPages {
		return content.ErrNotFound
	}
	title := heading + " | " + a.Config.Name
	if p.Number > 1 {
		title = fmt.Sprintf("%s, Page %d | %s", heading, p.Number, a.Config.Name)
	}
	meta := PageMeta{
		Title:       title,
		Description: a.Config.Description,
		URL:         AbsoluteURL(a.Config.URL, listURL(basePath, tag, p.Number)),
		OGType:      "website",
	}
	data := ListData{
		Site:     a.Config,
		Meta:     meta,
		Reader:   a.reader(c),
		Heading:  heading,
		Tag:      tag,
		BasePath: basePath,
		Page:     p,
	}
	if p.HasPrev() {
		data.PrevURL = listURL(basePath, tag, p.Number-1)
	}
	if p.HasNext() {
		data.NextURL = listURL(basePath, tag, p.Number+1)
	}
	return renderPage(c, meta, a.Views.Listing(data))
}

func (a *App) handlePost(c echo.Context) error {
	return a.renderPost(c, false)
}

func (a *App) handleTip(c echo.Context) error {
	return a.renderPost(c, true)
}

func (a *App) renderPost(c echo.Context, tips bool) error {
	ctx := c.Request().Context()
	post, err := a.Content.FetchBySlug(ctx, c.Param("slug"), tips)
	if err != nil {
		return err
	}

	var siblings content.Page
	if tips {
		siblings, err = a.Content.FetchByTag(ctx, content.TipTag, 1, relatedCount+1)
	} else {
		siblings, err = a.Content.FetchBlog(ctx, post.Tags, 1, relatedCount+1)
	}
	if err != nil {
		return err
	}

	meta := PageMeta{
		Title:       post.Title + " | " + a.Config.Name,
		Description: post.Description,
		URL:         AbsoluteURL(a.Config.URL, post.Path),
		OGType:      "article",
		Image:       AbsoluteURL(a.Config.URL, post.ImageURL),
	}
	return renderPage(c, meta, a.Views.Post(PostData{
		Site:    a.Config,
		Meta:    meta,
		Reader:  a.reader(c),
		Post:    post,
		Related: RelatedPosts(post, siblings.Posts, relatedCount),
		JSONLD:  BlogPostingJsonLD(post, a.Config),
	}))
}

func (a *App) handleSitemap(c echo.Context) error {
	set, err := a.GenerateSitemap(c.Request().Context())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationXMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return sitemap.Encode(c.Response(), set)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Content.FetchAll(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	path := filepath.Join(a.staticDir, "robots.txt")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}
	return c.String(http.StatusOK, fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s\n", sitemap.Join(a.Config.URL, "/sitemap.xml")))
}

func (a *App) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()
	if err := a.Store.HealthCheck(ctx); err != nil {
		c.Logger().Errorf("health check: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleNewsletter(c echo.Context) error {
	if !a.newsletter.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Newsletter signups are currently unavailable."})
	}

	ip := c.RealIP()
	if !a.signupLimiter.Check(ip) {
		a.Metrics.IncSignup(metrics.SignupLimited)
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many signups. Please try again later."})
	}
	a.signupLimiter.Record(ip)

	err := a.newsletter.Subscribe(c.Request().Context(), newsletter.Signup{
		Email:     c.FormValue("email"),
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Source:    c.FormValue("source"),
	})
	var rejected *newsletter.RejectedError
	switch {
	case errors.Is(err, newsletter.ErrInvalidEmail):
		a.Metrics.IncSignup(metrics.SignupInvalid)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Please enter a valid email address."})
	case errors.As(err, &rejected):
		a.Metrics.IncSignup(metrics.SignupRejected)
		a.Logger.WarnContext(c.Request().Context(), "newsletter webhook rejected signup", "status", rejected.Status)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "We could not sign you up right now."})
	case err != nil:
		a.Metrics.IncSignup(metrics.SignupFailed)
		a.Logger.ErrorContext(c.Request().Context(), "newsletter signup failed", "error", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "We could not sign you up right now."})
	}

	a.Metrics.IncSignup(metrics.SignupOK)
	if err := setRegistered(c); err != nil {
		c.Logger().Warnf("save session: %v", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// statusFor maps a handler error to the status the error handler will send.
func statusFor(err error) int {
	var se *content.StoreError
	var he *echo.HTTPError
	switch {
	case errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &se):
		return http.StatusServiceUnavailable
	case errors.As(err, &he):
		return he.Code
	default:
		return http.StatusInternalServerError
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := statusFor(err)
	switch {
	case code == http.StatusNotFound:
		a.Metrics.IncNotFound(c.Path())
		_ = RenderStatus(c, code, a.Views.NotFound(a.Config))
	case code == http.StatusServiceUnavailable:
		var se *content.StoreError
		if errors.As(err, &se) {
			a.Metrics.IncStoreError(se.Op)
		}
		c.Logger().Errorf("store unavailable: %v", err)
		_ = RenderStatus(c, code, a.Views.Unavailable(a.Config))
	case code >= 500:
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.Config))
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}

func pageParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func listURL(basePath, tag string, page int) string {
	q := url.Values{}
	if tag != "" {
		q.Set("tag", tag)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return basePath
	}
	return basePath + "?" + q.Encode()
}
