package cardpress

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/cardpress/markdown"
)

type rssXML struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	ContentNS string     `xml:"xmlns:content,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Image       rssImage  `xml:"image"`
	Items       []rssItem `xml:"item"`
}

type rssImage struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type rssItem struct {
	Title       string       `xml:"title"`
	Link        string       `xml:"link"`
	Description string       `xml:"description"`
	Content     rssCDATA     `xml:"content:encoded"`
	PubDate     string       `xml:"pubDate,omitempty"`
	GUID        string       `xml:"guid"`
	Enclosure   rssEnclosure `xml:"enclosure"`
}

type rssCDATA struct {
	Text string `xml:",cdata"`
}

// rssEnclosure points feed readers at the post's preview card. The length
// is unknown until the card is rendered, which RSS allows as 0.
type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int    `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

func (a *App) renderRSS(c echo.Context, posts []BlogPost) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if t, err := time.Parse("2006-01-02", p.Date); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		html, err := markdown.ToHTML(p.Content)
		if err != nil {
			c.Logger().Warnf("feed: render %s: %v", p.Slug, err)
		}
		postURL := BuildURL(base, "blog", p.Slug)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Summary,
			Content:     rssCDATA{Text: html},
			PubDate:     pubDate,
			GUID:        postURL,
			Enclosure:   rssEnclosure{URL: CardURL(base, p.Title), Type: "image/png"},
		})
	}
	feed := rssXML{
		Version:   "2.0",
		ContentNS: "http://purl.org/rss/1.0/modules/content/",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base),
			Description: a.Config.Description,
			Image: rssImage{
				URL:   CardURL(base, a.Config.Name),
				Title: a.Config.Name,
				Link:  BuildURL(base),
			},
			Items: items,
		},
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", feed)
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	ImageNS string       `xml:"xmlns:image,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string        `xml:"loc"`
	LastMod string        `xml:"lastmod,omitempty"`
	Image   *sitemapImage `xml:"image:image,omitempty"`
}

type sitemapImage struct {
	Loc string `xml:"image:loc"`
}

func (a *App) renderSitemap(c echo.Context, posts []BlogPost) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "blog", p.Slug),
			LastMod: p.Date,
			Image:   &sitemapImage{Loc: CardURL(base, p.Title)},
		})
	}
	sitemap := sitemapURLSet{
		XMLNS:   "http://www.sitemaps.org/schemas/sitemap/0.9",
		ImageNS: "http://www.google.com/schemas/sitemap-image/1.1",
		URLs:    urls,
	}
	return writeXML(c, "application/xml; charset=utf-8", sitemap)
}

func writeXML(c echo.Context, contentType string, v any) error {
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(v)
}
