package render

import (
	"strconv"

	"github.com/goliatone/go-vortex/pkg/model"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form model.
type RenderOptions struct {
	// Action overrides the endpoint declared by the form model.
	Action string
	// Values pre-populates rendered controls, keyed by field name. Values
	// from the accumulated record win over field defaults.
	Values map[string]string
	// Errors surfaces validation feedback keyed by field name. Renderers show
	// the first message of each field inline.
	Errors map[string][]string
	// FormErrors are messages not tied to a field.
	FormErrors []string
	// Hidden carries hidden inputs emitted with the form.
	Hidden map[string]string
	// Progress positions the step inside its flow. Zero disables the
	// indicator.
	Progress Progress
}

// Progress is the position of a step inside a multi-step flow.
type Progress struct {
	Step  int
	Steps int
}

// Enabled reports whether a progress indicator should be drawn.
func (p Progress) Enabled() bool {
	return p.Steps > 1 && p.Step >= 1 && p.Step <= p.Steps
}

// First reports whether the step is the first of its flow.
func (p Progress) First() bool {
	return p.Step <= 1
}

// Last reports whether the step is the last of its flow.
func (p Progress) Last() bool {
	return p.Step >= p.Steps
}

// Marker is a single dot of the progress indicator.
type Marker struct {
	Number  int  `json:"number"`
	Done    bool `json:"done"`
	Current bool `json:"current"`
	// Connector is true for every marker except the last, which has no line
	// leading to a following step.
	Connector bool `json:"connector"`
	// Passed lights the connector once the visitor is past this step.
	Passed bool `json:"passed"`
}

// Markers returns one marker per step. Steps up to and including the current
// one are done.
func (p Progress) Markers() []Marker {
	if !p.Enabled() {
		return nil
	}
	out := make([]Marker, 0, p.Steps)
	for i := 1; i <= p.Steps; i++ {
		out = append(out, Marker{
			Number:    i,
			Done:      i <= p.Step,
			Current:   i == p.Step,
			Connector: i < p.Steps,
			Passed:    i < p.Step,
		})
	}
	return out
}

// ProgressFromForm reads the step position recorded in the form metadata.
func ProgressFromForm(form model.FormModel) Progress {
	step, _ := strconv.Atoi(form.Metadata["step"])
	steps, _ := strconv.Atoi(form.Metadata["steps"])
	return Progress{Step: step, Steps: steps}
}

// FirstError returns the message to show for field, if any.
func (o RenderOptions) FirstError(field string) string {
	for _, msg := range o.Errors[field] {
		if msg != "" {
			return msg
		}
	}
	return ""
}

// Value returns the value to pre-fill for field, falling back to its default.
func (o RenderOptions) Value(field model.Field) string {
	if v, ok := o.Values[field.Name]; ok {
		return v
	}
	return field.Default
}
