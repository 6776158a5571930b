package web

import "embed"

// Templates embeds the admin HTML shells.
//
//go:embed templates/*.html
var Templates embed.FS

// Static embeds static assets.
//
//go:embed static
var Static embed.FS
