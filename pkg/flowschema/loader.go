package flowschema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-vortex/pkg/flow"
	"github.com/goliatone/go-vortex/pkg/model"
)

// OptionSource supplies select options resolved at load time.
type OptionSource func() []model.Option

// Option configures loading.
type Option func(*config)

type config struct {
	sources map[string]OptionSource
}

// WithOptionSource registers a named option source referenced by a field's
// optionsFrom key.
func WithOptionSource(name string, source OptionSource) Option {
	return func(cfg *config) {
		name = strings.TrimSpace(name)
		if name == "" || source == nil {
			return
		}
		cfg.sources[name] = source
	}
}

// LoadFS walks the provided filesystem and parses JSON/YAML flow documents,
// one definition per file. Definitions are returned sorted by id. When fsys is
// nil the result is empty.
func LoadFS(fsys fs.FS, options ...Option) ([]flow.Definition, error) {
	cfg := config{sources: make(map[string]OptionSource)}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if fsys == nil {
		return nil, nil
	}

	seen := make(map[string]string)
	var defs []flow.Definition
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("flowschema: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		def, err := normaliseDefinition(doc, path, cfg)
		if err != nil {
			return err
		}
		if prev, exists := seen[def.ID]; exists {
			return fmt.Errorf("flowschema: duplicate flow %q (files %s and %s)", def.ID, prev, path)
		}
		seen[def.ID] = path
		defs = append(defs, def)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs, nil
}

// LoadInto loads every definition from fsys into registry, replacing any
// definition with the same id.
func LoadInto(registry *flow.Registry, fsys fs.FS, options ...Option) error {
	if registry == nil {
		return fmt.Errorf("flowschema: registry is nil")
	}
	defs, err := LoadFS(fsys, options...)
	if err != nil {
		return err
	}
	for _, def := range defs {
		if err := registry.Replace(def); err != nil {
			return fmt.Errorf("flowschema: register %q: %w", def.ID, err)
		}
	}
	return nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("flowschema: file %s is empty", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("flowschema: parse %s: %w", source, err)
		}
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("flowschema: parse %s: %w", source, err)
	}
	return doc, nil
}

func normaliseDefinition(doc documentFile, source string, cfg config) (flow.Definition, error) {
	id := strings.TrimSpace(doc.ID)
	if id == "" {
		return flow.Definition{}, fmt.Errorf("flowschema: file %s defines a flow without an id", source)
	}

	def := flow.Definition{
		ID:          id,
		Title:       strings.TrimSpace(doc.Title),
		Description: strings.TrimSpace(doc.Description),
		Path:        strings.TrimSpace(doc.Path),
		Metadata:    cloneStrings(doc.Metadata),
		Steps:       make([]flow.Step, 0, len(doc.Steps)),
	}

	for i, rawStep := range doc.Steps {
		step := flow.Step{
			ID:          strings.TrimSpace(rawStep.ID),
			Title:       strings.TrimSpace(rawStep.Title),
			Description: strings.TrimSpace(rawStep.Description),
			SubmitLabel: strings.TrimSpace(rawStep.SubmitLabel),
			Fields:      make([]model.Field, 0, len(rawStep.Fields)),
		}
		if step.ID == "" {
			step.ID = fmt.Sprintf("step-%d", i+1)
		}
		for _, rawField := range rawStep.Fields {
			field, err := normaliseField(rawField, cfg)
			if err != nil {
				return flow.Definition{}, fmt.Errorf("flowschema: flow %q (file %s) step %q: %w", id, source, step.ID, err)
			}
			step.Fields = append(step.Fields, field)
		}
		def.Steps = append(def.Steps, step)
	}

	if err := def.Validate(); err != nil {
		return flow.Definition{}, fmt.Errorf("flowschema: file %s: %w", source, err)
	}
	return def, nil
}

func normaliseField(raw fieldFile, cfg config) (model.Field, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return model.Field{}, fmt.Errorf("field without a name")
	}

	fieldType := model.FieldType(strings.TrimSpace(raw.Type))
	if fieldType == "" {
		fieldType = model.FieldTypeText
	}
	label := strings.TrimSpace(raw.Label)
	if label == "" {
		label = model.FieldLabel(name)
	}

	field := model.Field{
		Name:        name,
		Type:        fieldType,
		Required:    raw.Required,
		Label:       label,
		Placeholder: raw.Placeholder,
		Description: raw.Description,
		Default:     raw.Default,
		Metadata:    cloneStrings(raw.Metadata),
	}

	for _, opt := range raw.Options {
		field.Options = append(field.Options, model.Option{Value: opt.Value, Label: opt.Label})
	}
	if from := strings.TrimSpace(raw.OptionsFrom); from != "" {
		source, ok := cfg.sources[from]
		if !ok {
			return model.Field{}, fmt.Errorf("field %q references unknown option source %q", name, from)
		}
		field.Options = append(field.Options, source()...)
	}

	for _, r := range raw.Rules {
		kind := strings.TrimSpace(r.Kind)
		if kind == "" {
			return model.Field{}, fmt.Errorf("field %q has a rule without a kind", name)
		}
		field.Validations = append(field.Validations, model.ValidationRule{Kind: kind, Params: r.params()})
	}
	return field, nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func cloneStrings(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
