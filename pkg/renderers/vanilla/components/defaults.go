package components

import (
	"bytes"
	"fmt"

	"github.com/goliatone/go-vortex/pkg/model"
)

const templatePrefix = "templates/components/"

// defaultTemplates maps each built-in component to its template. Date
// fields reuse the input template with type="date".
var defaultTemplates = map[string]string{
	NameInput:    "input.tmpl",
	NameDate:     "input.tmpl",
	NameTextarea: "textarea.tmpl",
	NameSelect:   "select.tmpl",
	NameUpload:   "upload.tmpl",
	NameCode:     "code.tmpl",
}

// NewDefaultRegistry returns a registry holding the built-in controls.
func NewDefaultRegistry() *Registry {
	registry := New()
	for name, file := range defaultTemplates {
		registry.MustRegister(name, Descriptor{Renderer: templateComponentRenderer(templatePrefix + file)})
	}
	return registry
}

func templateComponentRenderer(templateName string) Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		payload := map[string]any{
			"field":      field,
			"input_type": inputType(field.Type),
			"control_id": data.ControlID,
			"value":      data.Value,
			"error":      data.Error,
			"invalid":    data.Error != "",
			"config":     data.Config,
		}
		rendered, err := data.Template.RenderTemplate(templateName, payload)
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", templateName, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

func inputType(t model.FieldType) string {
	switch t {
	case model.FieldTypeEmail:
		return "email"
	case model.FieldTypePassword:
		return "password"
	case model.FieldTypeDate:
		return "date"
	case model.FieldTypeFile:
		return "file"
	default:
		return "text"
	}
}
