package render

import (
	"context"

	"github.com/goliatone/go-vortex/pkg/model"
)

// Renderer converts the FormModel of one flow step into a byte representation
// (an HTML fragment, terminal prompts, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.FormModel, options RenderOptions) ([]byte, error)
}
