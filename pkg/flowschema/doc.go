// Package flowschema loads flow definitions from JSON or YAML documents. The
// bundled definitions (login, two-factor, signup and profile) are embedded and
// exposed through EmbeddedFS; deployments can layer a directory of their own
// documents on top with LoadInto.
package flowschema
