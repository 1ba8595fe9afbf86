package sitemap

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/remodelpress/content"
)

func post(slug, tags string, created, updated time.Time) content.Post {
	return content.Post{
		Slug:      slug,
		Tags:      tags,
		Path:      content.PathFor(slug, tags),
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

func TestBuild(t *testing.T) {
	created := time.Date(2024, 2, 3, 22, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	posts := []content.Post{
		post("kitchen-islands", "Kitchen Remodel", created, time.Time{}),
		post("seal-grout", content.TipTag, created, updated),
		post("", "Kitchen Remodel", created, time.Time{}),
	}

	set := Build("https://example.com/", StaticRoutes, posts)
	require.Len(t, set.URLs, 5)

	assert.Equal(t, URL{Loc: "https://example.com/", ChangeFreq: "daily", Priority: "1.0"}, set.URLs[0])
	assert.Equal(t, URL{Loc: "https://example.com/blog", ChangeFreq: "daily", Priority: "0.9"}, set.URLs[1])
	assert.Equal(t, URL{Loc: "https://example.com/tips", ChangeFreq: "weekly", Priority: "0.8"}, set.URLs[2])
	assert.Equal(t, URL{Loc: "https://example.com/blog/posts/kitchen-islands", LastMod: "2024-02-03", ChangeFreq: "monthly", Priority: "0.7"}, set.URLs[3])
	assert.Equal(t, URL{Loc: "https://example.com/tips/seal-grout", LastMod: "2024-05-06", ChangeFreq: "monthly", Priority: "0.7"}, set.URLs[4])
}

func TestBuildWithoutDates(t *testing.T) {
	set := Build("https://example.com", nil, []content.Post{post("x", "", time.Time{}, time.Time{})})
	require.Len(t, set.URLs, 1)
	assert.Empty(t, set.URLs[0].LastMod)
}

func TestEncode(t *testing.T) {
	set := Build("https://example.com", StaticRoutes[:1], nil)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, set))

	out := buf.String()
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, out, `<loc>https://example.com/</loc>`)
	assert.Contains(t, out, `<changefreq>daily</changefreq>`)
	assert.NotContains(t, out, `<lastmod>`)

	var decoded URLSet
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, set.URLs, decoded.URLs)
}

func TestEncodeEscapesLoc(t *testing.T) {
	set := Build("https://example.com", nil, []content.Post{post("a&b", "", time.Time{}, time.Time{})})
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, set))
	assert.Contains(t, buf.String(), "<loc>https://example.com/blog/posts/a&amp;b</loc>")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "sitemap.xml")
	set := Build("https://example.com", StaticRoutes, nil)
	require.NoError(t, WriteFile(path, set))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<loc>https://example.com/tips</loc>")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be gone")
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "https://example.com/", Join("https://example.com", "/"))
	assert.Equal(t, "https://example.com/blog", Join("https://example.com/", "blog"))
	assert.Equal(t, "https://example.com/sub/tips/x", Join("https://example.com/sub/", "/tips/x"))
}
