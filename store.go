package cardpress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = errors.New("cardpress: post not found")

const postColumns = `slug, title, date, tags, summary, content, published`

// sqlitePragmas is applied by the driver to every pooled connection. WAL lets
// page reads continue while an import writes; busy_timeout makes writers wait
// instead of failing with SQLITE_BUSY.
const sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=cache_size(-8000)"

// Store wraps a SQLite database and provides CRUD operations for blog posts.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?"+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    tags TEXT NOT NULL,
    summary TEXT NOT NULL,
    content TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS posts_published_date ON posts (published, date DESC);
`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (BlogPost, error) {
	var (
		p         BlogPost
		tags      string
		published int
	)
	if err := row.Scan(&p.Slug, &p.Title, &p.Date, &tags, &p.Summary, &p.Content, &published); err != nil {
		return BlogPost{}, err
	}
	p.Tags = ParseTags(tags)
	p.Link = "/blog/" + p.Slug
	p.Published = published == 1
	return p, nil
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]BlogPost, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListPosts returns all published posts ordered by date descending.
// If tag is non-empty, results are filtered to posts containing that tag.
func (s *Store) ListPosts(ctx context.Context, tag string) ([]BlogPost, error) {
	if tag == "" {
		return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE published = 1 ORDER BY date DESC`)
	}
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE published = 1 AND instr(tags, ',' || ? || ',') > 0 ORDER BY date DESC`, normalizeTag(tag))
}

// ListAllPosts returns every post (published and drafts) ordered by date descending.
func (s *Store) ListAllPosts(ctx context.Context) ([]BlogPost, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts ORDER BY date DESC`)
}

// ListTags returns a sorted, deduplicated slice of all tags from published posts.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tags FROM posts WHERE published = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result := make([]string, 0, len(set))
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// GetPost returns a single published post by slug, or ErrNotFound.
func (s *Store) GetPost(ctx context.Context, slug string) (BlogPost, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = 1`, slug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return BlogPost{}, ErrNotFound
	}
	return p, err
}

// SavePost upserts a blog post. Tags are normalized to lowercase.
func (s *Store) SavePost(ctx context.Context, p BlogPost) error {
	if p.Slug == "" {
		return errors.New("cardpress: post slug is required")
	}
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = normalizeTag(t); t != "" {
			tags = append(tags, t)
		}
	}
	published := 0
	if p.Published {
		published = 1
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Slug, p.Title, p.Date, ","+strings.Join(tags, ",")+",", p.Summary, p.Content, published)
	return err
}

// DeletePost removes a post by slug. Deleting a missing post returns ErrNotFound.
func (s *Store) DeletePost(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE slug = ?`, slug)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
