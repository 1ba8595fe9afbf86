// Package remodelpress serves a home-remodeling blog from a hosted posts
// table. Posts are written out-of-band; the site reads them, cleans and
// renders them, and exposes listings, tips, a sitemap, an RSS feed and a
// newsletter signup.
//
// Templates are supplied by the caller through ViewFuncs, so the package owns
// handler logic, middleware and data access while the site owns its markup.
package remodelpress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/echo/v4"

	"github.com/eringen/remodelpress/bottrack"
	"github.com/eringen/remodelpress/content"
	"github.com/eringen/remodelpress/metrics"
	"github.com/eringen/remodelpress/newsletter"
	"github.com/eringen/remodelpress/store"
)

// ViewFuncs holds the templ components the handlers render.
type ViewFuncs struct {
	Home        func(data HomeData) templ.Component
	Listing     func(data ListData) templ.Component
	Post        func(data PostData) templ.Component
	NotFound    func(site SiteConfig) templ.Component
	Unavailable func(site SiteConfig) templ.Component
	ServerError func(site SiteConfig) templ.Component
}

// ContentStore is the database surface the App needs.
type ContentStore interface {
	content.Store
	HealthCheck(ctx context.Context) error
	Close() error
}

// App wires together the store, resolver, handlers, middleware and views.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   ContentStore
	Content *content.Resolver
	Views   ViewFuncs
	Logger  *slog.Logger
	Metrics metrics.Recorder

	prom          *metrics.PrometheusRecorder
	newsletter    *newsletter.Client
	tracker       *bottrack.Tracker
	botReporter   bottrack.Reporter
	signupLimiter *SignupLimiter
	scheduler     gocron.Scheduler
	customRoutes  []func(*App)
	staticDir     string
	ready         bool
}

// New creates an App with the given configuration and views.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = slog.Default()
	}
	return a
}

// Setup opens the store and registers middleware and routes. Start calls it;
// tests call it directly and drive a.Echo with httptest.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("remodelpress: SessionSecret is required")
	}

	if a.Store == nil {
		s, err := store.Open(a.Config.StoreDriver, a.Config.DatabaseURL)
		if err != nil {
			return fmt.Errorf("remodelpress: init store: %w", err)
		}
		a.Store = s
	}

	if a.prom == nil {
		a.prom = metrics.NewPrometheusRecorder(nil)
	}
	a.Metrics = a.prom

	a.Content = content.New(a.Store, content.WithLogger(a.Logger))
	a.newsletter = newsletter.NewClient(a.Config.NewsletterWebhookURL, nil)
	a.signupLimiter = NewSignupLimiter(5, time.Minute)

	if a.botReporter == nil && a.Config.BotTrackingURL != "" {
		a.botReporter = bottrack.NewHTTPReporter(a.Config.BotTrackingURL, a.Config.BotTrackingTimeout, a.Logger, a.Metrics)
	}
	a.tracker = bottrack.NewTracker(a.Config.URL, a.botReporter, a.Metrics, bottrack.WithSecureCookie(a.Config.CookieSecure))

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start sets up the app, starts the sitemap job and serves until the server
// is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := a.Store.HealthCheck(ctx)
	cancel()
	if err != nil {
		// Pages answer 503 until the store recovers.
		a.Logger.Error("content store health check failed", "driver", a.Config.StoreDriver, "error", err)
	}
	if err := a.startScheduler(); err != nil {
		return fmt.Errorf("remodelpress: start scheduler: %w", err)
	}
	a.Logger.Info("serving", "addr", a.Config.Addr, "store", a.Config.StoreDriver, "url", a.Config.URL)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/healthz", a.handleHealth)
	e.GET("/metrics", echo.WrapHandler(a.prom.Handler()))

	pages := e.Group("", a.tracker.Middleware, a.observe)
	pages.GET("/", a.handleHome)
	pages.GET("/blog", a.handleBlog)
	pages.GET("/blog/posts/:slug", a.handlePost)
	pages.GET("/tips", a.handleTips)
	pages.GET("/tips/:slug", a.handleTip)

	e.POST("/newsletter", a.handleNewsletter)
}

// Shutdown stops the scheduler, drains the HTTP server and waits for pending
// bot reports.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.scheduler != nil {
		errs = append(errs, a.scheduler.Shutdown())
	}
	errs = append(errs, a.Echo.Shutdown(ctx))
	if r, ok := a.botReporter.(*bottrack.HTTPReporter); ok {
		r.Wait()
	}
	return errors.Join(errs...)
}

// Close releases the store and stops the signup limiter.
func (a *App) Close() error {
	if a.signupLimiter != nil {
		a.signupLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
