// Package web serves the single page template builder
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// Handler returns an http.Handler that serves the builder page and its assets
func Handler() http.Handler {
	fsys, err := fs.Sub(staticFS, "static")
	if err != nil {
		// static is embedded at build time
		panic(err)
	}
	return http.FileServer(http.FS(fsys))
}
