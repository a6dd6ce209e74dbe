package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-vortex/pkg/model"
	"github.com/goliatone/go-vortex/pkg/render"
	rendertemplate "github.com/goliatone/go-vortex/pkg/render/template"
	gotemplate "github.com/goliatone/go-vortex/pkg/render/template/gotemplate"
	"github.com/goliatone/go-vortex/pkg/renderers/vanilla/components"
)

const defaultSubmitLabel = "Continue"

// Name is the registry name of the renderer.
const Name = "vanilla"

type Option func(*config)

type config struct {
	templateFS fs.FS
	registry   *components.Registry
	classes    ChromeClasses
}

// WithTemplatesFS replaces the embedded templates. The bundle must provide
// templates/form.tmpl and the templates/components/ controls.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithComponentRegistry replaces the default component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithChromeClasses overrides the wrapper classes.
func WithChromeClasses(classes ChromeClasses) Option {
	return func(cfg *config) {
		cfg.classes = classes
	}
}

// Renderer turns one flow step into an HTML form fragment: progress dots,
// heading, one control per field with its inline error, and the back and
// submit buttons.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	registry  *components.Registry
	classes   ChromeClasses
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	engine, err := gotemplate.New(gotemplate.WithFS(cfg.templateFS), gotemplate.WithExtension(".tmpl"))
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
	}

	registry := cfg.registry
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}

	return &Renderer{templates: engine, registry: registry, classes: cfg.classes.withDefaults()}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	progress := options.Progress
	if !progress.Enabled() {
		progress = render.ProgressFromForm(form)
	}

	fields := newComponentRenderer(r.templates, r.registry, r.classes.Field, options)
	rendered := make([]string, 0, len(form.Fields))
	multipart := false
	for _, field := range form.Fields {
		markup, err := fields.render(field)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		rendered = append(rendered, markup)
		if field.Type == model.FieldTypeFile {
			multipart = true
		}
	}

	var extra []render.HiddenField
	if progress.Step > 0 {
		extra = append(extra, render.StepField(progress.Step))
	}
	hidden := render.HiddenFields(options.Hidden, extra...)
	hiddenView := make([]map[string]string, 0, len(hidden))
	for _, h := range hidden {
		hiddenView = append(hiddenView, map[string]string{"name": h.Name, "value": h.Value})
	}

	action := strings.TrimSpace(options.Action)
	if action == "" {
		action = form.Endpoint
	}
	submit := strings.TrimSpace(form.Metadata["submitLabel"])
	if submit == "" {
		submit = defaultSubmitLabel
	}

	result, err := r.templates.RenderTemplate("templates/form.tmpl", map[string]any{
		"form": map[string]any{
			"id":          form.ID,
			"action":      action,
			"title":       form.Summary,
			"description": form.Description,
			"multipart":   multipart,
		},
		"classes":      r.classes.view(),
		"markers":      progress.Markers(),
		"hidden":       hiddenView,
		"fields":       rendered,
		"form_errors":  render.MergeFormErrors(options.FormErrors),
		"back":         progress.Enabled() && !progress.First(),
		"back_action":  render.ActionBack,
		"submit_label": submit,
		"stylesheets":  fields.stylesheets(),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
