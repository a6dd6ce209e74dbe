package flowschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type documentFile struct {
	ID          string            `json:"id" yaml:"id"`
	Title       string            `json:"title" yaml:"title"`
	Description string            `json:"description" yaml:"description"`
	Path        string            `json:"path" yaml:"path"`
	Metadata    map[string]string `json:"metadata" yaml:"metadata"`
	Steps       []stepFile        `json:"steps" yaml:"steps"`
}

type stepFile struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description" yaml:"description"`
	SubmitLabel string      `json:"submitLabel" yaml:"submitLabel"`
	Fields      []fieldFile `json:"fields" yaml:"fields"`
}

type fieldFile struct {
	Name        string            `json:"name" yaml:"name"`
	Type        string            `json:"type" yaml:"type"`
	Label       string            `json:"label" yaml:"label"`
	Placeholder string            `json:"placeholder" yaml:"placeholder"`
	Description string            `json:"description" yaml:"description"`
	Default     string            `json:"default" yaml:"default"`
	Required    bool              `json:"required" yaml:"required"`
	Options     []optionFile      `json:"options" yaml:"options"`
	OptionsFrom string            `json:"optionsFrom" yaml:"optionsFrom"`
	Rules       []ruleFile        `json:"rules" yaml:"rules"`
	Metadata    map[string]string `json:"metadata" yaml:"metadata"`
}

type ruleFile struct {
	Kind    string `json:"kind" yaml:"kind"`
	Value   string `json:"value" yaml:"value"`
	Pattern string `json:"pattern" yaml:"pattern"`
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

func (r ruleFile) params() map[string]string {
	params := make(map[string]string)
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			params[key] = value
		}
	}
	set("value", r.Value)
	set("pattern", r.Pattern)
	set("field", r.Field)
	set("message", r.Message)
	if len(params) == 0 {
		return nil
	}
	return params
}

// optionFile accepts either a bare scalar ("Salaried") or a {value, label}
// mapping.
type optionFile struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

func (o *optionFile) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		o.Value = node.Value
		o.Label = node.Value
		return nil
	case yaml.MappingNode:
		type plain optionFile
		var out plain
		if err := node.Decode(&out); err != nil {
			return err
		}
		*o = optionFile(out)
		if o.Label == "" {
			o.Label = o.Value
		}
		return nil
	default:
		return fmt.Errorf("flowschema: option at line %d must be a string or mapping", node.Line)
	}
}

func (o *optionFile) UnmarshalJSON(data []byte) error {
	var scalar string
	if err := json.Unmarshal(data, &scalar); err == nil {
		o.Value = scalar
		o.Label = scalar
		return nil
	}
	type plain optionFile
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("flowschema: option must be a string or object: %w", err)
	}
	*o = optionFile(out)
	if o.Label == "" {
		o.Label = o.Value
	}
	return nil
}
