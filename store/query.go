package store

import (
	"strconv"
	"strings"
)

// TagMatch filters on the tags column. Exact compares the whole string with
// case; otherwise Value is a case-insensitive substring.
type TagMatch struct {
	Value string
	Exact bool
}

// Query selects rows from blog_posts. Zero fields do not filter. Tags are
// combined with OR; every other filter is combined with AND.
type Query struct {
	// Slug matches case-insensitively.
	Slug string
	Tags []TagMatch
	// ExcludeTag drops rows whose tags equal it exactly. Rows without tags
	// are kept.
	ExcludeTag string
	Limit      int
	Offset     int
}

func (q Query) orderBy() string {
	return ` ORDER BY COALESCE(published_at, created_at) DESC NULLS LAST, created_at DESC, id`
}

type dialect struct {
	name        string
	placeholder func(n int) string
	schema      string
}

var postgresDialect = dialect{
	name:        DriverPostgres,
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	schema: `
CREATE TABLE IF NOT EXISTS blog_posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    slug TEXT,
    content TEXT,
    tags TEXT,
    image_url TEXT,
    excerpt TEXT,
    description TEXT,
    created_at TIMESTAMPTZ,
    published_at TIMESTAMPTZ,
    updated_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS blog_posts_slug_idx ON blog_posts (lower(slug));
`,
}

var sqliteDialect = dialect{
	name:        DriverSQLite,
	placeholder: func(int) string { return "?" },
	schema: `
CREATE TABLE IF NOT EXISTS blog_posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    slug TEXT,
    content TEXT,
    tags TEXT,
    image_url TEXT,
    excerpt TEXT,
    description TEXT,
    created_at DATETIME,
    published_at DATETIME,
    updated_at DATETIME
);
CREATE INDEX IF NOT EXISTS blog_posts_slug_idx ON blog_posts (lower(slug));
`,
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// where renders the WHERE clause for q along with its arguments.
func (d dialect) where(q Query) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return d.placeholder(len(args))
	}

	if q.Slug != "" {
		conds = append(conds, "lower(slug) = "+next(strings.ToLower(q.Slug)))
	}
	if len(q.Tags) > 0 {
		var alts []string
		for _, t := range q.Tags {
			if t.Exact {
				alts = append(alts, "tags = "+next(t.Value))
				continue
			}
			pattern := "%" + likeEscaper.Replace(strings.ToLower(t.Value)) + "%"
			alts = append(alts, "lower(tags) LIKE "+next(pattern)+` ESCAPE '\'`)
		}
		conds = append(conds, "("+strings.Join(alts, " OR ")+")")
	}
	if q.ExcludeTag != "" {
		conds = append(conds, "(tags IS NULL OR tags <> "+next(q.ExcludeTag)+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
