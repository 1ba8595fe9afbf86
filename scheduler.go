package remodelpress

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/eringen/remodelpress/sitemap"
)

// GenerateSitemap builds the sitemap from the static routes and every post.
func (a *App) GenerateSitemap(ctx context.Context) (sitemap.URLSet, error) {
	posts, err := a.Content.FetchAll(ctx)
	if err != nil {
		return sitemap.URLSet{}, err
	}
	set := sitemap.Build(a.Config.URL, a.Config.SitemapRoutes, posts)
	a.Metrics.SetSitemapURLs(len(set.URLs))
	return set, nil
}

// WriteSitemap generates the sitemap and writes it to path.
func (a *App) WriteSitemap(ctx context.Context, path string) (int, error) {
	set, err := a.GenerateSitemap(ctx)
	if err != nil {
		return 0, err
	}
	if err := sitemap.WriteFile(path, set); err != nil {
		return 0, err
	}
	return len(set.URLs), nil
}

// startScheduler regenerates Config.SitemapPath every SitemapInterval. It is
// a no-op when no path is configured.
func (a *App) startScheduler() error {
	if a.Config.SitemapPath == "" {
		return nil
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(a.Config.SitemapInterval),
		gocron.NewTask(a.runSitemapJob),
		gocron.WithName("sitemap"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to schedule sitemap job: %w", err)
	}
	s.Start()
	a.scheduler = s
	a.Logger.Info("sitemap job scheduled", "path", a.Config.SitemapPath, "interval", a.Config.SitemapInterval)
	return nil
}

func (a *App) runSitemapJob() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	start := time.Now()
	n, err := a.WriteSitemap(ctx, a.Config.SitemapPath)
	if err != nil {
		a.Logger.Error("sitemap job failed", "path", a.Config.SitemapPath, "error", err)
		return
	}
	a.Logger.Info("sitemap written", "path", a.Config.SitemapPath, "urls", n, "duration", time.Since(start))
}
