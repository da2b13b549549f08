// Package web bundles the site resources and page templates.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var files embed.FS

// Static is the public asset tree (i18n dictionary, tour catalog, css).
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err) // embedded layout is fixed at build time
	}
	return sub
}

// Templates holds the html/template sources.
func Templates() fs.FS {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}
