package web

import "embed"

// Content holds the embedded web frontend files and textures.
//
//go:embed index.html app.js styles.css satellite.svg
var Content embed.FS
