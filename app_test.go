package cardpress

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/cardpress/og"
)

func textComponent(format string, args ...any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	})
}

func testViews() ViewFuncs {
	return ViewFuncs{
		Home: func(meta PageMeta, posts []BlogPost, tag string, tags []string) templ.Component {
			return textComponent("home %d posts image=%s", len(posts), meta.Image)
		},
		HomePartial: func(meta PageMeta, posts []BlogPost, tag string, tags []string) templ.Component {
			return textComponent("home-partial %d", len(posts))
		},
		BlogSection: func(posts []BlogPost, tag string, tags []string) templ.Component {
			return textComponent("blog-section %d tag=%s", len(posts), tag)
		},
		Post: func(meta PageMeta, post BlogPost, related []BlogPost) templ.Component {
			return textComponent("post %s image=%s type=%s related=%d", post.Title, meta.Image, meta.OGType, len(related))
		},
		PostPartial: func(meta PageMeta, post BlogPost, related []BlogPost) templ.Component {
			return textComponent("post-partial %s", post.Title)
		},
		NotFound:    func() templ.Component { return textComponent("not found") },
		ServerError: func() templ.Component { return textComponent("server error") },
	}
}

func newTestApp(t *testing.T, cfg SiteConfig, opts ...Option) *App {
	t.Helper()
	if cfg.Name == "" {
		cfg.Name = "Test Blog"
	}
	if cfg.URL == "" {
		cfg.URL = "https://blog.example.com"
	}
	cfg.DatabasePath = filepath.Join(t.TempDir(), "blog.db")
	cfg.MetricsEnabled = true

	a := New(cfg, testViews(), opts...)
	require.NoError(t, a.Setup())
	t.Cleanup(func() { a.Close() })
	return a
}

func get(a *App, target string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

type countingSource struct {
	calls atomic.Int32
	err   error
}

func (s *countingSource) Fetch(ctx context.Context) ([]byte, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return og.EmbeddedFont().Fetch(ctx)
}

func TestCardImage(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	for _, title := range []string{"Hello World", strings.Repeat("a", 150)} {
		rec := get(a, CardURL("", title))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))

		cfg, format, err := image.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, og.Width, cfg.Width)
		assert.Equal(t, og.Height, cfg.Height)
	}
}

func TestCardImageMissingTitle(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	for _, target := range []string{"/api/og", "/api/og?title=", "/api/og?other=x"} {
		rec := get(a, target)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
		assert.Equal(t, "No title provided", rec.Body.String(), target)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"), target)
	}
}

func TestCardImageFontFailure(t *testing.T) {
	src := &countingSource{err: errors.New("font asset rejected")}
	a := newTestApp(t, SiteConfig{}, WithFontSource(src))

	for i := 0; i < 3; i++ {
		rec := get(a, "/api/og?title=Hello")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to generate image", rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "rejected")
	}
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestCardImageRenderFailure(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	// A renderer without a font loader panics inside layout.
	a.Cards = og.NewRenderer(nil, og.Options{SiteName: a.Config.Name})

	rec := get(a, "/api/og?title=Hello")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to generate image", rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	metrics := get(a, "/metrics").Body.String()
	assert.Contains(t, metrics, `cardpress_card_renders_total{result="error"} 1`)
}

func TestCardImageFontFetchedOnce(t *testing.T) {
	src := &countingSource{}
	a := newTestApp(t, SiteConfig{}, WithFontSource(src))

	for _, title := range []string{"One", "Two", "Three"} {
		rec := get(a, "/api/og?title="+title)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestCardImageRateLimited(t *testing.T) {
	a := newTestApp(t, SiteConfig{CardRateLimit: 2})

	assert.Equal(t, http.StatusOK, get(a, "/api/og?title=a").Code)
	assert.Equal(t, http.StatusOK, get(a, "/api/og?title=b").Code)
	rec := get(a, "/api/og?title=c")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests", rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestCardImageRateLimitDisabled(t *testing.T) {
	a := newTestApp(t, SiteConfig{CardRateLimit: -1})
	assert.Nil(t, a.cardLimiter)
}

func seedApp(t *testing.T, a *App, posts ...BlogPost) {
	t.Helper()
	for _, p := range posts {
		require.NoError(t, a.Store.SavePost(context.Background(), p))
	}
	a.Cache.Invalidate()
}

func TestPages(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	seedApp(t, a,
		BlogPost{Slug: "hello", Title: "Hello & Welcome", Date: "2024-01-02", Tags: []string{"go"}, Summary: "First", Content: "**hi**", Published: true},
		BlogPost{Slug: "other", Title: "Other", Date: "2024-01-01", Tags: []string{"go"}, Published: true},
		BlogPost{Slug: "draft", Title: "Draft", Date: "2024-01-03", Published: false},
	)

	rec := get(a, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "home 2 posts")
	assert.Contains(t, rec.Body.String(), "image=https://blog.example.com/api/og?title=Test+Blog")

	rec = get(a, "/?tag=go&partial=blog", "HX-Request", "true")
	assert.Equal(t, "blog-section 2 tag=go", rec.Body.String())

	rec = get(a, "/blog/hello/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "post Hello & Welcome")
	assert.Contains(t, body, "image="+CardURL(a.Config.URL, "Hello & Welcome"))
	assert.Contains(t, body, "type=article related=1")

	assert.Equal(t, http.StatusNotFound, get(a, "/blog/draft/").Code)
	rec = get(a, "/blog/missing/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", rec.Body.String())

	rec = get(a, "/blog")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
}

func TestFeeds(t *testing.T) {
	a := newTestApp(t, SiteConfig{Description: "Notes"})
	seedApp(t, a, BlogPost{Slug: "hello", Title: "Hello", Date: "2024-01-02", Summary: "First", Content: "Some *text*", Published: true})

	rec := get(a, "/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	feed := rec.Body.String()
	assert.Contains(t, feed, `<enclosure url="https://blog.example.com/api/og?title=Hello" length="0" type="image/png">`)
	assert.Contains(t, feed, `xmlns:content="http://purl.org/rss/1.0/modules/content/"`)
	assert.Contains(t, feed, "<content:encoded><![CDATA[<p>Some <em>text</em></p>")
	assert.Contains(t, feed, "<guid>https://blog.example.com/blog/hello/</guid>")

	rec = get(a, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	sitemap := rec.Body.String()
	assert.Contains(t, sitemap, "<loc>https://blog.example.com/blog/hello/</loc>")
	assert.Contains(t, sitemap, "<image:loc>https://blog.example.com/api/og?title=Hello</image:loc>")

	rec = get(a, "/robots.txt")
	assert.Contains(t, rec.Body.String(), "Sitemap: https://blog.example.com/sitemap.xml")
}

func TestFaviconFallback(t *testing.T) {
	a := newTestApp(t, SiteConfig{}, WithStaticDir(t.TempDir()))
	rec := get(a, "/favicon.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestMetrics(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	get(a, "/api/og?title=Hello")
	get(a, "/api/og")

	rec := get(a, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `cardpress_card_renders_total{result="ok"} 1`)
	assert.Contains(t, body, `cardpress_card_renders_total{result="missing_title"} 1`)
	assert.Contains(t, body, "cardpress_card_render_duration_seconds_count 1")
}

func TestCustomRoutes(t *testing.T) {
	a := newTestApp(t, SiteConfig{}, WithCustomRoutes(func(a *App) {
		a.Echo.GET("/hello/", func(c echo.Context) error { return c.String(http.StatusOK, "hi") })
	}))
	rec := get(a, "/hello/")
	assert.Equal(t, "hi", rec.Body.String())
}

func TestRenderFailureReachesErrorHandler(t *testing.T) {
	failing := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, "<p>partial")
		return errors.New("template exploded")
	})
	a := newTestApp(t, SiteConfig{}, WithCustomRoutes(func(a *App) {
		a.Echo.GET("/broken/", func(c echo.Context) error { return Render(c, failing) })
	}))

	rec := get(a, "/broken/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "server error", rec.Body.String())
}
