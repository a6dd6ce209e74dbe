package vortex

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-vortex/pkg/renderers/vanilla"
)

func TestAssetsFSContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), vanilla.StylesheetName)
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(data), "--vx-accent-green") {
		t.Fatalf("expected stylesheet to use the theme variables")
	}
}

func TestPageTemplatesContainLayout(t *testing.T) {
	if _, err := fs.Stat(PageTemplates(), "templates/layout.tmpl"); err != nil {
		t.Fatalf("expected layout template: %v", err)
	}
	if _, err := fs.Stat(FormTemplates(), "templates/form.tmpl"); err != nil {
		t.Fatalf("expected form template: %v", err)
	}
}
