package vanilla

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/goliatone/go-vortex/pkg/model"
	"github.com/goliatone/go-vortex/pkg/render"
	"github.com/goliatone/go-vortex/pkg/render/template"
	"github.com/goliatone/go-vortex/pkg/renderers/vanilla/components"
)

const componentConfigMetadataKey = "componentConfig"

type componentRenderer struct {
	templates  template.TemplateRenderer
	registry   *components.Registry
	fieldClass string
	options    render.RenderOptions

	usedComponents map[string]struct{}
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, fieldClass string, options render.RenderOptions) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates:      templates,
		registry:       registry,
		fieldClass:     fieldClass,
		options:        options,
		usedComponents: make(map[string]struct{}),
	}
}

func (r *componentRenderer) render(field model.Field) (string, error) {
	componentName := components.ForField(field)

	descriptor, ok := r.registry.Descriptor(componentName)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", componentName, field.Name)
	}

	config, err := parseComponentConfig(field.Metadata[componentConfigMetadataKey])
	if err != nil {
		return "", fmt.Errorf("parse component config for field %q: %w", field.Name, err)
	}

	value := r.options.Value(field)
	// Passwords are never echoed back into the page.
	if field.Type == model.FieldTypePassword {
		value = ""
	}
	message := r.options.FirstError(field.Name)

	data := components.ComponentData{
		Template:  r.templates,
		ControlID: componentControlID(field.Name),
		Value:     value,
		Error:     message,
		Config:    config,
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", componentName, field.Name, err)
	}

	r.usedComponents[componentName] = struct{}{}

	return buildFieldMarkup(field, r.fieldClass, componentName, control.String(), message), nil
}

func (r *componentRenderer) stylesheets() []string {
	if len(r.usedComponents) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.usedComponents))
	for name := range r.usedComponents {
		names = append(names, name)
	}
	slices.Sort(names)
	return r.registry.Stylesheets(names)
}

func buildFieldMarkup(field model.Field, fieldClass, componentName, control, message string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="`)
	builder.WriteString(html.EscapeString(fieldClass))
	if cls := sanitizeClassList(field.Metadata["class"]); cls != "" {
		builder.WriteByte(' ')
		builder.WriteString(html.EscapeString(cls))
	}
	if message != "" {
		builder.WriteString(` vx-field-invalid`)
	}
	builder.WriteString(`" data-component="`)
	builder.WriteString(html.EscapeString(componentName))
	builder.WriteString(`" data-field="`)
	builder.WriteString(html.EscapeString(field.Name))
	builder.WriteString("\">\n")

	if label := strings.TrimSpace(field.Label); label != "" {
		builder.WriteString(`    <label for="`)
		builder.WriteString(html.EscapeString(componentControlID(field.Name)))
		builder.WriteString(`" class="vx-label">`)
		builder.WriteString(html.EscapeString(label))
		builder.WriteString("</label>\n")
	}

	for _, line := range strings.Split(control, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("    ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	if desc := strings.TrimSpace(field.Description); desc != "" {
		builder.WriteString(`    <small class="vx-description">`)
		builder.WriteString(html.EscapeString(desc))
		builder.WriteString("</small>\n")
	}

	if message != "" {
		builder.WriteString(`    <p id="`)
		builder.WriteString(html.EscapeString(componentErrorID(field.Name)))
		builder.WriteString(`" class="vx-error" role="alert">`)
		builder.WriteString(html.EscapeString(message))
		builder.WriteString("</p>\n")
	}

	builder.WriteString("</div>\n")
	return builder.String()
}

func parseComponentConfig(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var cfg map[string]any
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
