package cardpress

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eringen/cardpress/og"
)

// SiteConfig holds all configuration for a cardpress site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name and card label (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL and card footer (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/blog.db")

	CardFontPath  string `yaml:"card_font_path"`  // Bold TTF/OTF for cards; empty uses the bundled Go Bold
	CardRateLimit int    `yaml:"card_rate_limit"` // Card renders per IP per minute; negative disables (default 120)

	MetricsEnabled bool `yaml:"metrics_enabled"` // Serve Prometheus metrics on /metrics

	PostCacheTTL time.Duration `yaml:"post_cache_ttl"` // Post cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.CardRateLimit == 0 {
		c.CardRateLimit = 120
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
}

// LoadSiteConfig reads a YAML site file. A missing path yields a zero config.
func LoadSiteConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read site config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse site config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any SITE_*, DATABASE_PATH, ADDR, CARD_* and
// METRICS_ENABLED environment variables that are set.
func (c *SiteConfig) ApplyEnv() error {
	c.Name = EnvOr("SITE_NAME", c.Name)
	c.URL = EnvOr("SITE_URL", c.URL)
	c.Description = EnvOr("SITE_DESCRIPTION", c.Description)
	c.Author = EnvOr("SITE_AUTHOR", c.Author)
	c.Addr = EnvOr("ADDR", c.Addr)
	c.DatabasePath = EnvOr("DATABASE_PATH", c.DatabasePath)
	c.CardFontPath = EnvOr("CARD_FONT_PATH", c.CardFontPath)

	if v := os.Getenv("CARD_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CARD_RATE_LIMIT: %w", err)
		}
		// Negative disables; zero would be replaced by the default.
		c.CardRateLimit = n
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		c.MetricsEnabled = strings.EqualFold(v, "true") || v == "1"
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithFontSource overrides where the card font comes from. It takes
// precedence over SiteConfig.CardFontPath.
func WithFontSource(src og.FontSource) Option {
	return func(a *App) {
		a.fonts = src
	}
}
