package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newPostgresStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgContainer, err := tcpg.Run(ctx,
		"postgres:16-alpine",
		tcpg.WithDatabase("remodelpress"),
		tcpg.WithUsername("postgres"),
		tcpg.WithPassword("password"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(context.Background()) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// Wait for DB
	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)

	s := New(db)
	require.NoError(t, s.EnsureSchema(ctx))
	return s
}

func TestPostgresStore(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()

	seed(t, s,
		Post{ID: "a", Title: "Kitchen", Slug: "Kitchen-Ideas", Tags: "Kitchen Remodel", CreatedAt: day(1)},
		Post{ID: "b", Title: "Tip", Slug: "grout-tip", Tags: "Jerome", CreatedAt: day(2), PublishedAt: day(3)},
		Post{ID: "c", Title: "Untagged", Slug: "untagged", CreatedAt: day(4)},
	)

	require.NoError(t, s.HealthCheck(ctx))

	posts, err := s.Find(ctx, Query{Slug: "kitchen-ideas", ExcludeTag: "Jerome"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "a", posts[0].ID)

	posts, err = s.Find(ctx, Query{Tags: []TagMatch{{Value: "Jerome", Exact: true}}})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].PublishedAt.Equal(day(3)))

	posts, err = s.Find(ctx, Query{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "b", posts[0].ID)
	assert.Equal(t, "a", posts[1].ID)

	n, err := s.Count(ctx, Query{ExcludeTag: "Jerome"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
