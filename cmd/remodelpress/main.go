package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/eringen/remodelpress"
	"github.com/eringen/remodelpress/content"
	"github.com/eringen/remodelpress/sitemap"
	"github.com/eringen/remodelpress/store"
	"github.com/eringen/remodelpress/views"
)

var CLI struct {
	Verbose bool `short:"v" help:"Enable verbose logging"`

	Serve struct{} `cmd:"" default:"1" help:"Serve the blog"`

	Sitemap struct {
		Output string `short:"o" help:"Sitemap file to write" default:"public/sitemap.xml"`
	} `cmd:"" help:"Write sitemap.xml once and exit"`

	Seed struct {
		File string `arg:"" help:"YAML file of posts to insert" type:"existingfile"`
	} `cmd:"" help:"Create the posts table if needed and insert fixture posts"`

	Check struct{} `cmd:"" help:"Check that the posts table is reachable"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("remodelpress"),
		kong.Description("Home remodeling blog server."),
	)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := remodelpress.ConfigFromEnv()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	switch ctx.Command() {
	case "serve":
		err = runServe(cfg, logger)
	case "sitemap":
		err = runSitemap(cfg, logger, CLI.Sitemap.Output)
	case "seed <file>":
		err = runSeed(cfg, CLI.Seed.File)
	case "check":
		err = runCheck(cfg)
	default:
		err = errors.New("unknown command " + ctx.Command())
	}
	if err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}

func runServe(cfg remodelpress.SiteConfig, logger *slog.Logger) error {
	app := remodelpress.New(cfg, views.New(), remodelpress.WithLogger(logger))
	defer app.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errChan := make(chan error, 1)
	go func() { errChan <- app.Start() }()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping server...")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	return app.Shutdown(shutdownCtx)
}

func runSitemap(cfg remodelpress.SiteConfig, logger *slog.Logger, output string) error {
	s, err := store.Open(cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer s.Close()

	posts, err := content.New(s, content.WithLogger(logger)).FetchAll(context.Background())
	if err != nil {
		return err
	}
	set := sitemap.Build(cfg.URL, cfg.SitemapRoutes, posts)
	if err := sitemap.WriteFile(output, set); err != nil {
		return err
	}
	slog.Info("Sitemap written", "path", output, "urls", len(set.URLs))
	return nil
}

func runCheck(cfg remodelpress.SiteConfig) error {
	s, err := store.Open(cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.HealthCheck(ctx); err != nil {
		return err
	}
	slog.Info("Store reachable", "driver", cfg.StoreDriver)
	return nil
}
