// Package template defines the template engine seam shared by the HTML step
// renderer and the site pages. The gotemplate subpackage provides the
// pongo2-backed implementation.
package template
