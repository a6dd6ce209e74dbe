package vortex

import (
	"io/fs"

	"github.com/goliatone/go-vortex/pkg/renderers/vanilla"
)

// AssetsFS exposes the static files the pages link to, the stylesheet
// included, so they can be served from another mux.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(vortex.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
