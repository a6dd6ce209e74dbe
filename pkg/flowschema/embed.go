package flowschema

import (
	"embed"
	"io/fs"
)

//go:embed flows/*.yaml
var embeddedFlows embed.FS

// EmbeddedFS returns the bundled flow definitions.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedFlows, "flows")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}
