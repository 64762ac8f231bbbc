package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"

	"github.com/eringen/cardpress"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// A missing .env is normal in production.
	_ = godotenv.Load()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "serve":
		err = runServe(args)
	case "card":
		err = runCard(args)
	case "import":
		err = runImport(args)
	case "delete":
		err = runDelete(args)
	case "version":
		fmt.Printf("cardpress %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the optional SITE_CONFIG file and layers environment
// overrides on top.
func loadConfig() (cardpress.SiteConfig, error) {
	cfg, err := cardpress.LoadSiteConfig(cardpress.EnvOr("SITE_CONFIG", ""))
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func parseLogLevel(s string) (log.Lvl, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG, nil
	case "", "info":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return log.INFO, fmt.Errorf("unknown log level %q", s)
}

func printUsage() {
	fmt.Println(`cardpress - A blog engine that renders social preview cards

Usage:
  cardpress <command> [arguments]

Commands:
  serve                 Serve the blog and the /api/og card endpoint
  card <title>          Render one preview card to a PNG file
  import <dir>          Import markdown posts with YAML frontmatter
  delete <slug>         Delete a post
  version               Print the cardpress version
  help                  Show this help message

Configuration is read from SITE_CONFIG (a YAML file), then from
environment variables and an optional .env file.

Examples:
  cardpress serve --addr :8080
  cardpress card "Hello World" -o hello.png
  cardpress import ./posts`)
}
