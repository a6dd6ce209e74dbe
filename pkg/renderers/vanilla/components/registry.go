package components

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-vortex/pkg/model"
	rendertemplate "github.com/goliatone/go-vortex/pkg/render/template"
)

// Renderer writes the control markup for field into buf.
type Renderer func(buf *bytes.Buffer, field model.Field, data ComponentData) error

// ComponentData carries the per-request state of one control.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	// ControlID is the id attribute the field label points at.
	ControlID string
	Value     string
	Error     string
	Config    map[string]any
}

// Descriptor is a registered control and the stylesheets it needs.
type Descriptor struct {
	Renderer    Renderer
	Stylesheets []string
}

// Registry maps component names, case-insensitively, to descriptors.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Descriptor
}

func New() *Registry {
	return &Registry{byName: make(map[string]Descriptor)}
}

// Register adds or replaces the component called name.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	name = normalize(name)
	switch {
	case name == "":
		return fmt.Errorf("components: component name is required")
	case descriptor.Renderer == nil:
		return fmt.Errorf("components: renderer for %q is nil", name)
	}
	descriptor.Stylesheets = slices.Clone(descriptor.Stylesheets)

	r.mu.Lock()
	r.byName[name] = descriptor
	r.mu.Unlock()
	return nil
}

func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor returns a copy of the named descriptor.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	descriptor, ok := r.byName[normalize(name)]
	r.mu.RUnlock()
	descriptor.Stylesheets = slices.Clone(descriptor.Stylesheets)
	return descriptor, ok
}

// Names lists the registered components in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Stylesheets collects the stylesheets of the named components, first seen
// first, without repeats. Unknown names are skipped.
func (r *Registry) Stylesheets(names []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for _, name := range names {
		for _, href := range r.byName[normalize(name)].Stylesheets {
			if href != "" && !slices.Contains(out, href) {
				out = append(out, href)
			}
		}
	}
	return out
}

// ForField picks the component for a field: a "component" metadata override
// first, then the one matching its type.
func ForField(field model.Field) string {
	if name := normalize(field.Metadata["component"]); name != "" {
		return name
	}
	switch field.Type {
	case model.FieldTypeTextArea:
		return NameTextarea
	case model.FieldTypeSelect:
		return NameSelect
	case model.FieldTypeDate:
		return NameDate
	case model.FieldTypeFile:
		return NameUpload
	case model.FieldTypeCode:
		return NameCode
	default:
		return NameInput
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
