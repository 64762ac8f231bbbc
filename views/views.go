// Package views is the default cardpress theme. Every full page carries
// OpenGraph and Twitter card tags pointing at the page's generated preview
// image, so shared links unfurl with a card.
//
// The markup lives in the *.templ files; run `make templ` after editing them.
package views

import (
	"net/url"

	"github.com/a-h/templ"

	"github.com/eringen/cardpress"
)

// Theme renders pages for one site.
type Theme struct {
	cfg cardpress.SiteConfig
}

// New returns ViewFuncs backed by the default theme.
func New(cfg cardpress.SiteConfig) cardpress.ViewFuncs {
	t := &Theme{cfg: cfg}
	return cardpress.ViewFuncs{
		Home:        t.Home,
		HomePartial: t.HomePartial,
		BlogSection: t.BlogSection,
		Post:        t.Post,
		PostPartial: t.PostPartial,
		NotFound:    t.NotFound,
		ServerError: t.ServerError,
	}
}

// Home is the full listing page.
func (t *Theme) Home(meta cardpress.PageMeta, posts []cardpress.BlogPost, activeTag string, tags []string) templ.Component {
	return page(t.cfg, meta, t.HomePartial(meta, posts, activeTag, tags))
}

// HomePartial is the listing without the document shell, for htmx swaps.
func (t *Theme) HomePartial(meta cardpress.PageMeta, posts []cardpress.BlogPost, activeTag string, tags []string) templ.Component {
	return homeContent(t.cfg, posts, activeTag, tags)
}

// BlogSection renders the tag filter and the post list.
func (t *Theme) BlogSection(posts []cardpress.BlogPost, activeTag string, tags []string) templ.Component {
	return blogSection(posts, activeTag, tags)
}

// Post is a full article page.
func (t *Theme) Post(meta cardpress.PageMeta, post cardpress.BlogPost, related []cardpress.BlogPost) templ.Component {
	return page(t.cfg, meta, postContent(post, related))
}

// PostPartial is the article body without the document shell.
func (t *Theme) PostPartial(meta cardpress.PageMeta, post cardpress.BlogPost, related []cardpress.BlogPost) templ.Component {
	return postContent(post, related)
}

// NotFound is the 404 page.
func (t *Theme) NotFound() templ.Component {
	return page(t.cfg, t.errorMeta("Not found"), message("Not found", "The page you are looking for does not exist."))
}

// ServerError is the 500 page.
func (t *Theme) ServerError() templ.Component {
	return page(t.cfg, t.errorMeta("Something went wrong"), message("Something went wrong", "Please try again in a moment."))
}

func (t *Theme) errorMeta(title string) cardpress.PageMeta {
	return cardpress.PageMeta{
		Title:  title + " | " + t.cfg.Name,
		URL:    cardpress.BuildURL(t.cfg.URL),
		OGType: "website",
		Image:  cardpress.CardURL(t.cfg.URL, t.cfg.Name),
	}
}

func tagURL(tag string) templ.SafeURL {
	return templ.URL("/?tag=" + url.QueryEscape(tag))
}

func tagPartialURL(tag string) string {
	return "/?tag=" + url.QueryEscape(tag) + "&partial=blog"
}

func postURL(p cardpress.BlogPost) templ.SafeURL {
	return templ.URL(p.Link + "/")
}

// jsonLD emits structured data. json.Marshal escapes <, > and &, so the
// payload cannot close the script element.
func jsonLD(data string) templ.Component {
	return templ.Raw(`<script type="application/ld+json">` + data + `</script>`)
}
