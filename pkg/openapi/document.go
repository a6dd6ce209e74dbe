package openapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var embeddedDocument []byte

// Document is a loaded and validated OpenAPI description.
type Document struct {
	spec     *openapi3.T
	location string
}

// Operation is the subset of operation metadata listed by the CLI.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
}

// Default loads the embedded API description.
func Default(ctx context.Context) (*Document, error) {
	return Load(ctx, "embedded:openapi.yaml", embeddedDocument)
}

// LoadFile reads a document from disk.
func LoadFile(ctx context.Context, path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", path, err)
	}
	return Load(ctx, path, raw)
}

// LoadFS reads a document from fsys.
func LoadFS(ctx context.Context, fsys fs.FS, name string) (*Document, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", name, err)
	}
	return Load(ctx, name, raw)
}

// Load parses raw (YAML or JSON) and validates it. location only labels
// errors.
func Load(ctx context.Context, location string, raw []byte) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", location, err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, fmt.Errorf("openapi: %s does not contain any paths", location)
	}
	if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate %s: %w", location, err)
	}
	return &Document{spec: spec, location: location}, nil
}

// Spec exposes the kin-openapi model.
func (d *Document) Spec() *openapi3.T {
	return d.spec
}

// Location reports where the document was loaded from.
func (d *Document) Location() string {
	return d.location
}

// JSON renders the document as JSON.
func (d *Document) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(d.spec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: encode: %w", err)
	}
	return data, nil
}

// Operations lists every operation sorted by path then method.
func (d *Document) Operations() []Operation {
	var out []Operation
	for path, item := range d.spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			out = append(out, Operation{ID: id, Method: method, Path: path, Summary: op.Summary})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path == out[j].Path {
			return out[i].Method < out[j].Method
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Handler serves the document as JSON.
func (d *Document) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		data, err := d.JSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	})
}
