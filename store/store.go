// Package store reads blog posts from the content database. It speaks to the
// hosted Postgres instance in production and to a local SQLite file in
// development and tests.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Table is the only table the site reads.
const Table = "blog_posts"

// Post is one row of blog_posts. NULL columns scan to zero values.
type Post struct {
	ID          string
	Title       string
	Slug        string
	Content     string
	Tags        string
	ImageURL    string
	Excerpt     string
	Description string
	CreatedAt   time.Time
	PublishedAt time.Time
	UpdatedAt   time.Time
}

// Driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store wraps a database handle and runs reads against blog_posts.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the content database. For SQLite, dsn is a file path whose
// directory is created when missing.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverPostgres:
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("store: open postgres: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		return &Store{db: db, dialect: postgresDialect}, nil
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("store: open sqlite: %w", err)
		}
		if _, err := db.Exec(`
			PRAGMA journal_mode=WAL;
			PRAGMA busy_timeout=5000;
			PRAGMA synchronous=NORMAL;
		`); err != nil {
			db.Close()
			return nil, err
		}
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
		return &Store{db: db, dialect: sqliteDialect}, nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
}

// New wraps an existing Postgres handle.
func New(db *sql.DB) *Store {
	return &Store{db: db, dialect: postgresDialect}
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// HealthCheck verifies the database is reachable and blog_posts is readable.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+Table).Scan(&n)
	if err != nil {
		return fmt.Errorf("store: read %s: %w", Table, err)
	}
	return nil
}

// EnsureSchema creates blog_posts when it does not exist. The hosted database
// is managed out-of-band; this is for local files, seeding and tests.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.dialect.schema)
	return err
}

const columns = `id, title, slug, content, tags, image_url, excerpt, description, created_at, published_at, updated_at`

// Find returns the rows matching q.
func (s *Store) Find(ctx context.Context, q Query) ([]Post, error) {
	where, args := s.dialect.where(q)
	query := `SELECT ` + columns + ` FROM ` + Table + where + q.orderBy()
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += ` LIMIT ` + s.dialect.placeholder(len(args))
	}
	if q.Offset > 0 {
		if q.Limit <= 0 && s.dialect.name == DriverSQLite {
			// SQLite only accepts OFFSET after a LIMIT.
			query += ` LIMIT -1`
		}
		args = append(args, q.Offset)
		query += ` OFFSET ` + s.dialect.placeholder(len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Count returns the number of rows matching q, ignoring its limit and offset.
func (s *Store) Count(ctx context.Context, q Query) (int, error) {
	where, args := s.dialect.where(q)
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+Table+where, args...).Scan(&n)
	return n, err
}

// Insert writes p, generating an id when p.ID is empty. Rows are normally
// written outside the site; Insert exists for seeding.
func (s *Store) Insert(ctx context.Context, p Post) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	ph := make([]string, 11)
	for i := range ph {
		ph[i] = s.dialect.placeholder(i + 1)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+Table+` (`+columns+`) VALUES (`+strings.Join(ph, ", ")+`)`,
		p.ID, p.Title, nullString(p.Slug), p.Content, nullString(p.Tags), nullString(p.ImageURL),
		nullString(p.Excerpt), nullString(p.Description),
		nullTime(p.CreatedAt), nullTime(p.PublishedAt), nullTime(p.UpdatedAt))
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (Post, error) {
	var (
		p                                          Post
		slug, content, tags, image, excerpt, descr sql.NullString
		created, published, updated                sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Title, &slug, &content, &tags, &image, &excerpt, &descr,
		&created, &published, &updated); err != nil {
		return Post{}, err
	}
	p.Slug = slug.String
	p.Content = content.String
	p.Tags = tags.String
	p.ImageURL = image.String
	p.Excerpt = excerpt.String
	p.Description = descr.String
	p.CreatedAt = created.Time
	p.PublishedAt = published.Time
	p.UpdatedAt = updated.Time
	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
