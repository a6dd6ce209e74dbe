package vortex

import (
	"io/fs"

	"github.com/goliatone/go-vortex/pkg/renderers/vanilla"
	"github.com/goliatone/go-vortex/pkg/site"
)

// FormTemplates exposes the built-in step form templates so callers can
// reuse or extend them without importing the renderer package directly.
func FormTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// PageTemplates exposes the layout and page templates the site renders.
func PageTemplates() fs.FS {
	return site.TemplatesFS()
}
