package remodelpress

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/eringen/remodelpress/bottrack"
	"github.com/eringen/remodelpress/metrics"
	"github.com/eringen/remodelpress/sitemap"
	"github.com/eringen/remodelpress/store"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string // Site name (default "Home Remodeling Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Business name for JSON-LD

	Addr        string // Listen address (default ":3000")
	StoreDriver string // "postgres" or "sqlite" (default "sqlite")
	DatabaseURL string // Postgres DSN or SQLite path (default "data/blog.db")

	NewsletterWebhookURL string        // Signups are disabled when empty
	BotTrackingURL       string        // Bot events are only counted when empty
	BotTrackingTimeout   time.Duration // Per-event delivery timeout (default 5s)

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	SitemapPath     string        // Optional file the sitemap job writes
	SitemapInterval time.Duration // Sitemap job interval (default 1h)

	PageSize int // Posts per listing page (default 9)

	// SitemapRoutes are the static pages listed in the sitemap.
	SitemapRoutes []sitemap.StaticRoute
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Home Remodeling Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.StoreDriver == "" {
		c.StoreDriver = store.DriverSQLite
	}
	if c.DatabaseURL == "" && c.StoreDriver == store.DriverSQLite {
		c.DatabaseURL = "data/blog.db"
	}
	if c.BotTrackingTimeout == 0 {
		c.BotTrackingTimeout = 5 * time.Second
	}
	if c.SitemapInterval == 0 {
		c.SitemapInterval = time.Hour
	}
	if c.PageSize < 1 {
		c.PageSize = 9
	}
	if c.SitemapRoutes == nil {
		c.SitemapRoutes = sitemap.StaticRoutes
	}
}

// ConfigFromEnv reads the site configuration from the environment after
// loading a .env file from the working directory when one exists.
func ConfigFromEnv() (SiteConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return SiteConfig{}, fmt.Errorf("remodelpress: load .env: %w", err)
	}

	cfg := SiteConfig{
		Name:                 os.Getenv("SITE_NAME"),
		URL:                  os.Getenv("SITE_URL"),
		Description:          EnvOr("SITE_DESCRIPTION", "Kitchen, bathroom and whole-home remodeling guides and tips."),
		Author:               os.Getenv("SITE_AUTHOR"),
		Addr:                 os.Getenv("ADDR"),
		StoreDriver:          os.Getenv("STORE_DRIVER"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		NewsletterWebhookURL: os.Getenv("NEWSLETTER_WEBHOOK_URL"),
		BotTrackingURL:       os.Getenv("BOT_TRACKING_URL"),
		SessionSecret:        os.Getenv("SESSION_SECRET"),
		SitemapPath:          os.Getenv("SITEMAP_PATH"),
	}

	var err error
	if cfg.CookieSecure, err = envBool("COOKIE_SECURE"); err != nil {
		return cfg, err
	}
	if cfg.SitemapInterval, err = envDuration("SITEMAP_INTERVAL"); err != nil {
		return cfg, err
	}
	if cfg.BotTrackingTimeout, err = envDuration("BOT_TRACKING_TIMEOUT"); err != nil {
		return cfg, err
	}
	if v := os.Getenv("PAGE_SIZE"); v != "" {
		if cfg.PageSize, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("remodelpress: PAGE_SIZE: %w", err)
		}
	}
	cfg.setDefaults()
	return cfg, nil
}

func envBool(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("remodelpress: %s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("remodelpress: %s: %w", key, err)
	}
	return d, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory served under /public (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithStore uses s instead of opening the configured database.
func WithStore(s ContentStore) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithLogger sets the logger for domain events (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithMetrics replaces the Prometheus recorder created by Setup.
func WithMetrics(p *metrics.PrometheusRecorder) Option {
	return func(a *App) {
		a.prom = p
	}
}

// WithBotReporter replaces the HTTP reporter built from BotTrackingURL.
func WithBotReporter(r bottrack.Reporter) Option {
	return func(a *App) {
		a.botReporter = r
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
