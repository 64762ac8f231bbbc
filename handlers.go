package cardpress

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	tag := c.QueryParam("tag")
	posts, err := a.Cache.ListPosts(ctx, tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags(ctx)
	if err != nil {
		return err
	}
	if c.Request().Header.Get("HX-Request") == "true" {
		switch c.QueryParam("partial") {
		case "blog":
			return Render(c, a.Views.BlogSection(posts, tag, tags))
		case "home":
			return Render(c, a.Views.HomePartial(a.homeMeta(), posts, tag, tags))
		}
	}
	return Render(c, a.Views.Home(a.homeMeta(), posts, tag, tags))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Cache.GetPost(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	posts, err := a.Cache.ListPosts(ctx, "")
	if err != nil {
		return err
	}
	related := FilterRelatedPosts(post, posts)
	meta := a.postMeta(post)
	if c.Request().Header.Get("HX-Request") == "true" && c.QueryParam("partial") == "post" {
		return Render(c, a.Views.PostPartial(meta, post, related))
	}
	return Render(c, a.Views.Post(meta, post, related))
}

func (a *App) homeMeta() PageMeta {
	return PageMeta{
		Title:       a.Config.Name,
		Description: a.Config.Description,
		URL:         BuildURL(a.Config.URL),
		OGType:      "website",
		Image:       CardURL(a.Config.URL, a.Config.Name),
		JSONLD:      WebsiteJsonLD(a.Config),
	}
}

func (a *App) postMeta(post BlogPost) PageMeta {
	return PageMeta{
		Title:       post.Title,
		Description: post.Summary,
		URL:         BuildURL(a.Config.URL, "blog", post.Slug),
		OGType:      "article",
		Image:       CardURL(a.Config.URL, post.Title),
		JSONLD:      BlogPostingJsonLD(post, a.Config),
	}
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

// handleFavicon serves the user's favicon.svg, falling back to the bundled
// logo mark.
func (a *App) handleFavicon(c echo.Context) error {
	path := filepath.Join(a.staticDir, "favicon.svg")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}
	b, err := fs.ReadFile(EmbeddedAssets, "embedded/favicon.svg")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/svg+xml", b)
}

// handleRobots generates robots.txt from the site URL.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /metrics\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
