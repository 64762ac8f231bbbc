package cardpress

import "embed"

// EmbeddedAssets contains static assets shipped with the engine: the logo
// mark as favicon.svg, served when the static dir has none.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
