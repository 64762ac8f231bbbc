// Package cardpress is a personal blog engine built with Go, Echo, and templ.
// Every page it serves advertises a generated social preview card, rendered
// on demand by the og package, so shared links unfurl with a branded image.
//
// Users provide their own templ templates via the ViewFuncs struct (or use the
// default theme in the views package), and cardpress handles routing,
// middleware, storage, feeds and card rendering.
package cardpress

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/cardpress/og"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. Every full page receives a PageMeta whose Image field
// points at the page's preview card.
type ViewFuncs struct {
	Home        func(meta PageMeta, posts []BlogPost, activeTag string, tags []string) templ.Component
	HomePartial func(meta PageMeta, posts []BlogPost, activeTag string, tags []string) templ.Component
	BlogSection func(posts []BlogPost, activeTag string, tags []string) templ.Component
	Post        func(meta PageMeta, post BlogPost, related []BlogPost) templ.Component
	PostPartial func(meta PageMeta, post BlogPost, related []BlogPost) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central cardpress application. It wires together the store,
// cache, card renderer, handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache
	Cards  *og.Renderer
	Views  ViewFuncs

	fonts        og.FontSource
	cardLimiter  *RateLimiter
	registry     *prometheus.Registry
	metrics      *cardMetrics
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new cardpress App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup opens the store, starts the card font fetch, and registers
// middleware and routes. Start calls it; tests call it directly and drive
// a.Echo with httptest.
func (a *App) Setup() error {
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("cardpress: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)

	if a.fonts == nil {
		a.fonts = og.EmbeddedFont()
		if a.Config.CardFontPath != "" {
			a.fonts = og.FileFont(a.Config.CardFontPath)
		}
	}
	fonts := og.NewFontLoader(a.fonts)
	fonts.Prefetch()
	a.Cards = og.NewRenderer(fonts, og.Options{
		SiteName: a.Config.Name,
		SiteURL:  a.Config.URL,
	})

	if a.Config.CardRateLimit > 0 {
		a.cardLimiter = NewRateLimiter(a.Config.CardRateLimit, time.Minute)
	}

	a.registry = prometheus.NewRegistry()
	a.metrics = newCardMetrics(a.registry)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start runs Setup and serves HTTP on Config.Addr until the server stops.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("cardpress: serving %s on %s", a.Config.URL, a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// User's static assets, with the bundled favicon as a fallback.
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Social preview cards
	e.GET(cardPath, a.handleCardImage)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/blog/:slug/", a.handlePost)

	if a.Config.MetricsEnabled {
		e.GET("/metrics", a.metricsHandler())
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.cardLimiter != nil {
		a.cardLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
