// Package content reads blog posts from markdown files with YAML frontmatter.
//
// A post file looks like:
//
//	---
//	title: Wiring up credential login
//	date: 2024-03-01
//	tags: [go, auth]
//	summary: A walk through the login flow.
//	---
//	Body in markdown...
package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoFrontmatter is returned for files that do not start with a --- block.
var ErrNoFrontmatter = errors.New("content: missing frontmatter")

const (
	dateLayout = "2006-01-02"
	delimiter  = "---"
)

// Post is one parsed markdown file.
type Post struct {
	Path string `yaml:"-"`

	Title   string   `yaml:"title"`
	Date    string   `yaml:"date"`
	Tags    []string `yaml:"tags,omitempty"`
	Summary string   `yaml:"summary,omitempty"`
	Slug    string   `yaml:"slug,omitempty"`
	Draft   bool     `yaml:"draft,omitempty"`

	Content string `yaml:"-"`
}

// Parse splits data into frontmatter and body and validates the result.
// name is used for error messages and, without its extension, as the
// fallback slug.
func Parse(name string, data []byte) (Post, error) {
	front, body, ok := splitFrontmatter(bytes.TrimPrefix(data, []byte("\ufeff")))
	if !ok {
		return Post{}, fmt.Errorf("%s: %w", name, ErrNoFrontmatter)
	}

	p := Post{
		Path:    name,
		Content: string(bytes.TrimSpace(body)),
	}
	if err := yaml.Unmarshal(front, &p); err != nil {
		return Post{}, fmt.Errorf("%s: parse frontmatter: %w", name, err)
	}

	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return Post{}, fmt.Errorf("%s: title is required", name)
	}
	if p.Slug == "" {
		p.Slug = slugFromName(name)
	}
	if p.Date == "" {
		p.Date = time.Now().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, p.Date); err != nil {
		return Post{}, fmt.Errorf("%s: invalid date %q, use YYYY-MM-DD", name, p.Date)
	}
	return p, nil
}

// ParseFile reads and parses a single post file.
func ParseFile(path string) (Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Post{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(path, data)
}

// LoadDir parses every .md file under dir, sorted by path. It stops at the
// first invalid file.
func LoadDir(dir string) ([]Post, error) {
	var posts []Post
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		p, err := ParseFile(path)
		if err != nil {
			return err
		}
		posts = append(posts, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].Path < posts[j].Path })
	return posts, nil
}

// splitFrontmatter separates the YAML block from the body. Both delimiters
// must be lines consisting only of "---".
func splitFrontmatter(data []byte) (front, body []byte, ok bool) {
	first, rest, found := bytes.Cut(data, []byte("\n"))
	if !found || !isDelimiter(first) {
		return nil, nil, false
	}
	for off := 0; off < len(rest); {
		line, next := rest[off:], len(rest)
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line, next = line[:i], off+i+1
		}
		if isDelimiter(line) {
			return rest[:off], rest[next:], true
		}
		off = next
	}
	return nil, nil, false
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, "\r")) == delimiter
}

func slugFromName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
