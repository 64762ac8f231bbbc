package cardpress

import (
	"context"
	"sync"
	"time"
)

// PostCache is an in-memory cache of published blog posts and tags with TTL.
// Pages, feeds and the sitemap read through it; imports call Invalidate.
type PostCache struct {
	mu      sync.RWMutex
	posts   []BlogPost
	tags    []string
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.tags = nil
	c.mu.Unlock()
}

// ensureLoaded returns cached posts and tags, reloading them from the store
// under the write lock when the TTL has expired.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]BlogPost, []string, error) {
	c.mu.RLock()
	if c.valid() {
		posts, tags := c.posts, c.tags
		c.mu.RUnlock()
		return posts, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.posts, c.tags, nil
	}
	posts, err := c.store.ListPosts(ctx, "")
	if err != nil {
		return nil, nil, err
	}
	tags, err := c.store.ListTags(ctx)
	if err != nil {
		return nil, nil, err
	}
	if posts == nil {
		posts = []BlogPost{}
	}
	c.posts, c.tags, c.fetched = posts, tags, time.Now()
	return c.posts, c.tags, nil
}

// ListPosts returns published posts, optionally filtered by tag.
func (c *PostCache) ListPosts(ctx context.Context, tag string) ([]BlogPost, error) {
	posts, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return posts, nil
	}
	normalized := normalizeTag(tag)
	var filtered []BlogPost
	for _, p := range posts {
		for _, t := range p.Tags {
			if normalizeTag(t) == normalized {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// ListTags returns all unique tags from published posts.
func (c *PostCache) ListTags(ctx context.Context) ([]string, error) {
	_, tags, err := c.ensureLoaded(ctx)
	return tags, err
}

// GetPost returns a single published post by slug, or ErrNotFound.
func (c *PostCache) GetPost(ctx context.Context, slug string) (BlogPost, error) {
	posts, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return BlogPost{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return BlogPost{}, ErrNotFound
}
