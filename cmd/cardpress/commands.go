package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/eringen/cardpress"
	"github.com/eringen/cardpress/content"
	"github.com/eringen/cardpress/og"
	"github.com/eringen/cardpress/views"
)

func runServe(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flags := pflag.NewFlagSet("cardpress serve", pflag.ExitOnError)
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flags.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database path")
	flags.BoolVar(&cfg.MetricsEnabled, "metrics", cfg.MetricsEnabled, "serve Prometheus metrics on /metrics")
	staticDir := flags.String("static", "public", "directory for static assets")
	if err := flags.Parse(args); err != nil {
		return err
	}

	level, err := parseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return err
	}

	app := cardpress.New(cfg, cardpress.ViewFuncs{}, cardpress.WithStaticDir(*staticDir))
	app.Views = views.New(app.Config)
	app.Echo.HideBanner = true
	app.Echo.Logger.SetLevel(level)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runCard(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flags := pflag.NewFlagSet("cardpress card", pflag.ExitOnError)
	out := flags.StringP("output", "o", "card.png", "output PNG file")
	fontPath := flags.String("font", cfg.CardFontPath, "TTF/OTF font file; empty uses the bundled font")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("usage: cardpress card <title> [-o file.png]")
	}

	// Defaults for name and URL come from New.
	cfg = cardpress.New(cfg, cardpress.ViewFuncs{}).Config

	src := og.EmbeddedFont()
	if *fontPath != "" {
		src = og.FileFont(*fontPath)
	}
	r := og.NewRenderer(og.NewFontLoader(src), og.Options{
		SiteName: cfg.Name,
		SiteURL:  cfg.URL,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	png, err := r.Render(ctx, flags.Arg(0))
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, png, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Printf("Wrote %s (%dx%d, %d bytes)\n", *out, og.Width, og.Height, len(png))
	return nil
}

func openStore(args []string, name string) (*cardpress.Store, *pflag.FlagSet, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	cfg = cardpress.New(cfg, cardpress.ViewFuncs{}).Config

	flags := pflag.NewFlagSet("cardpress "+name, pflag.ExitOnError)
	flags.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database path")
	if err := flags.Parse(args); err != nil {
		return nil, nil, err
	}
	store, err := cardpress.NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return store, flags, nil
}

func runImport(args []string) error {
	store, flags, err := openStore(args, "import")
	if err != nil {
		return err
	}
	defer store.Close()
	if flags.NArg() != 1 {
		return errors.New("usage: cardpress import <dir>")
	}

	posts, err := content.LoadDir(flags.Arg(0))
	if err != nil {
		return err
	}
	ctx := context.Background()
	for _, p := range posts {
		post := cardpress.BlogPost{
			Slug:      cardpress.Slugify(p.Slug),
			Title:     p.Title,
			Date:      p.Date,
			Tags:      cardpress.FilterEmpty(p.Tags),
			Summary:   p.Summary,
			Content:   p.Content,
			Published: !p.Draft,
		}
		if err := store.SavePost(ctx, post); err != nil {
			return fmt.Errorf("%s: %w", p.Path, err)
		}
		fmt.Printf("  imported %s\n", post.Slug)
	}
	fmt.Printf("Imported %d posts\n", len(posts))
	return nil
}

func runDelete(args []string) error {
	store, flags, err := openStore(args, "delete")
	if err != nil {
		return err
	}
	defer store.Close()
	if flags.NArg() != 1 {
		return errors.New("usage: cardpress delete <slug>")
	}

	slug := flags.Arg(0)
	if err := store.DeletePost(context.Background(), slug); err != nil {
		if errors.Is(err, cardpress.ErrNotFound) {
			return fmt.Errorf("no post with slug %q", slug)
		}
		return err
	}
	fmt.Printf("Deleted %s\n", slug)
	return nil
}
