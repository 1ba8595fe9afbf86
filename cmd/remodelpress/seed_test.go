package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFixtures(t *testing.T) {
	posts, err := loadFixtures(filepath.Join("testdata", "posts.yaml"))
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "kitchen-island-ideas", posts[0].Slug)
	assert.Contains(t, posts[0].Content, "### How much clearance do I need?")
	assert.True(t, posts[0].PublishedAt.IsZero())
	assert.Equal(t, time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC), posts[0].CreatedAt.UTC())

	assert.Equal(t, "Jerome", posts[1].Tags)
	assert.Equal(t, "Fill trim gaps first for a clean paint line.", posts[1].Description)
}

func TestLoadFixturesRequiresTitle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("posts:\n  - slug: untitled\n"), 0o644))

	_, err := loadFixtures(path)
	assert.ErrorContains(t, err, "no title")
}
