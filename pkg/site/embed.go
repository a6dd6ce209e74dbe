package site

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/pages/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the page templates: templates/layout.tmpl wraps the
// body rendered from one of templates/pages.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
