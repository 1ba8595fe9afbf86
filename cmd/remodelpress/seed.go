package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eringen/remodelpress"
	"github.com/eringen/remodelpress/store"
)

type fixtureFile struct {
	Posts []fixturePost `yaml:"posts"`
}

type fixturePost struct {
	Title       string    `yaml:"title"`
	Slug        string    `yaml:"slug"`
	Tags        string    `yaml:"tags"`
	Content     string    `yaml:"content"`
	ImageURL    string    `yaml:"image_url"`
	Excerpt     string    `yaml:"excerpt"`
	Description string    `yaml:"description"`
	CreatedAt   time.Time `yaml:"created_at"`
	PublishedAt time.Time `yaml:"published_at"`
	UpdatedAt   time.Time `yaml:"updated_at"`
}

func loadFixtures(path string) ([]store.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	posts := make([]store.Post, 0, len(f.Posts))
	for i, p := range f.Posts {
		if p.Title == "" {
			return nil, fmt.Errorf("%s: post %d has no title", path, i+1)
		}
		posts = append(posts, store.Post{
			Title:       p.Title,
			Slug:        p.Slug,
			Tags:        p.Tags,
			Content:     p.Content,
			ImageURL:    p.ImageURL,
			Excerpt:     p.Excerpt,
			Description: p.Description,
			CreatedAt:   p.CreatedAt,
			PublishedAt: p.PublishedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	return posts, nil
}

func runSeed(cfg remodelpress.SiteConfig, path string) error {
	posts, err := loadFixtures(path)
	if err != nil {
		return err
	}
	s, err := store.Open(cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	for _, p := range posts {
		id, err := s.Insert(ctx, p)
		if err != nil {
			return fmt.Errorf("insert %q: %w", p.Title, err)
		}
		slog.Debug("Inserted post", "id", id, "slug", p.Slug)
	}
	slog.Info("Seeded posts", "count", len(posts), "driver", cfg.StoreDriver)
	return nil
}
