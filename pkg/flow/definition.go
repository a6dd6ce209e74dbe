package flow

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-vortex/pkg/model"
	"github.com/goliatone/go-vortex/pkg/validation"
)

// Step is one screen of a flow.
type Step struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	SubmitLabel string        `json:"submitLabel,omitempty"`
	Fields      []model.Field `json:"fields"`
}

// Definition is the ordered step table of a flow. Steps are addressed by
// their 1-based index through StepAt.
type Definition struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Path        string            `json:"path,omitempty"`
	Steps       []Step            `json:"steps"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Len reports the number of steps.
func (d Definition) Len() int {
	return len(d.Steps)
}

// StepAt returns the step with the given 1-based index.
func (d Definition) StepAt(n int) (Step, bool) {
	if n < 1 || n > len(d.Steps) {
		return Step{}, false
	}
	return d.Steps[n-1], true
}

// Final reports whether n is the last step.
func (d Definition) Final(n int) bool {
	return n == len(d.Steps)
}

// Field looks a field up across every step.
func (d Definition) Field(name string) (model.Field, bool) {
	for _, step := range d.Steps {
		for _, field := range step.Fields {
			if field.Name == name {
				return field, true
			}
		}
	}
	return model.Field{}, false
}

// Redact returns a copy of record without the values of password fields.
func (d Definition) Redact(record Record) Record {
	out := make(Record, len(record))
	for name, value := range record {
		if field, ok := d.Field(name); ok && field.Type == model.FieldTypePassword {
			continue
		}
		out[name] = value
	}
	return out
}

// FormModel projects step n into the renderer-facing model.
func (d Definition) FormModel(n int) (model.FormModel, error) {
	step, ok := d.StepAt(n)
	if !ok {
		return model.FormModel{}, fmt.Errorf("%w: %s step %d", ErrStepOutOfRange, d.ID, n)
	}
	fields := make([]model.Field, len(step.Fields))
	copy(fields, step.Fields)
	return model.FormModel{
		ID:          d.ID + "." + step.ID,
		Endpoint:    d.Path,
		Method:      "POST",
		Summary:     step.Title,
		Description: step.Description,
		Fields:      fields,
		Metadata: map[string]string{
			"flow":        d.ID,
			"step":        fmt.Sprint(n),
			"steps":       fmt.Sprint(d.Len()),
			"submitLabel": step.SubmitLabel,
		},
	}, nil
}

// Validate checks the definition is usable: ids present, field names unique
// across the flow, rules well formed and confirmation peers resolvable.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("flow: definition id is required")
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("flow: definition %q has no steps", d.ID)
	}

	seen := make(map[string]int)
	for i, step := range d.Steps {
		if strings.TrimSpace(step.ID) == "" {
			return fmt.Errorf("flow: definition %q step %d has no id", d.ID, i+1)
		}
		for _, field := range step.Fields {
			if strings.TrimSpace(field.Name) == "" {
				return fmt.Errorf("flow: definition %q step %q has a field without a name", d.ID, step.ID)
			}
			if prev, dup := seen[field.Name]; dup {
				return fmt.Errorf("flow: definition %q field %q declared in steps %d and %d", d.ID, field.Name, prev, i+1)
			}
			seen[field.Name] = i + 1
			for _, rule := range field.Validations {
				if err := validation.CheckRule(rule); err != nil {
					return fmt.Errorf("flow: definition %q field %q: %w", d.ID, field.Name, err)
				}
			}
		}
	}

	// Cross rules are evaluated against the submitted step, so the peer has
	// to live in the same step.
	for i, step := range d.Steps {
		for _, field := range step.Fields {
			for _, rule := range field.Validations {
				if !rule.Cross() {
					continue
				}
				peer := rule.Param("field")
				if seen[peer] != i+1 {
					return fmt.Errorf("flow: definition %q field %q references %q outside its step", d.ID, field.Name, peer)
				}
			}
		}
	}
	return nil
}
