// Package site serves Vortex over HTTP. Flow pages render one step at a time
// through the form renderer registry and keep each visitor's flow state on
// the server, keyed by a visitor cookie. The JSON API under /api drives the
// same flows through server held instances named by id, and is checked
// against the embedded OpenAPI description before any handler runs.
package site
