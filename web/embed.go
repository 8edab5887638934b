// Package web holds the page templates and browser assets compiled into the
// fintrack binary.
package web

import (
	"embed"
	"io/fs"
)

// PagesGlob matches every page template inside TemplatesFS.
const PagesGlob = "templates/*.html"

//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS

// Static returns the assets rooted at static/, ready to serve under /static/.
func Static() (fs.FS, error) {
	return fs.Sub(StaticFS, "static")
}
