package remodelpress

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/remodelpress/content"
)

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://remodel.example", "/blog", "https://remodel.example/blog"},
		{"https://remodel.example/", "/blog", "https://remodel.example/blog"},
		{"https://remodel.example", "tips", "https://remodel.example/tips"},
		{"https://remodel.example", "https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"https://remodel.example", "", "https://remodel.example"},
	}
	for _, tt := range tests {
		if got := AbsoluteURL(tt.base, tt.path); got != tt.want {
			t.Errorf("AbsoluteURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestRelatedPosts(t *testing.T) {
	current := content.Post{ID: "2", Slug: "b"}
	posts := []content.Post{{ID: "1", Slug: "a"}, {ID: "2", Slug: "b"}, {ID: "3", Slug: "c"}, {ID: "4", Slug: "d"}}

	got := RelatedPosts(current, posts, 2)
	if len(got) != 2 || got[0].Slug != "a" || got[1].Slug != "c" {
		t.Errorf("RelatedPosts = %+v", got)
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	post := content.Post{
		Title:       "Tile & Grout",
		Description: "Seal it.",
		Path:        "/blog/posts/tile-grout",
		ImageURL:    "/public/images/tile.jpg",
		Tags:        "Bathroom Remodel",
		CreatedAt:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	cfg := SiteConfig{Name: "Remodel", URL: "https://remodel.example", Author: "Acme Builders"}

	var got map[string]any
	if err := json.Unmarshal([]byte(BlogPostingJsonLD(post, cfg)), &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"headline":      "Tile & Grout",
		"url":           "https://remodel.example/blog/posts/tile-grout",
		"image":         "https://remodel.example/public/images/tile.jpg",
		"datePublished": "2024-02-01T00:00:00Z",
		"dateModified":  "2024-03-01T00:00:00Z",
		"keywords":      "Bathroom Remodel",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %q", k, got[k], v)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{content.ErrNotFound, 404},
		{&content.StoreError{Op: "latest"}, 503},
		{echo.NewHTTPError(400), 400},
		{errors.New("boom"), 500},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
