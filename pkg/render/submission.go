package render

import (
	"sort"
	"strconv"
	"strings"
)

// Hidden inputs the HTML flow pages post back.
const (
	HiddenStep   = "_step"
	HiddenAction = "_action"
	ActionBack   = "back"
	ActionResend = "resend"
)

// HiddenField is a hidden input emitted next to the step fields.
type HiddenField struct {
	Name  string
	Value string
}

// StepField carries the step a form was rendered for, so a stale post from
// a second tab or the browser back button can be told apart.
func StepField(step int) HiddenField {
	return HiddenField{Name: HiddenStep, Value: strconv.Itoa(step)}
}

// HiddenFields merges extra fields into base and returns them sorted by name.
// Blank names are dropped and later fields win.
func HiddenFields(base map[string]string, extra ...HiddenField) []HiddenField {
	merged := make(map[string]string, len(base)+len(extra))
	for name, value := range base {
		if name = strings.TrimSpace(name); name != "" {
			merged[name] = value
		}
	}
	for _, field := range extra {
		if name := strings.TrimSpace(field.Name); name != "" {
			merged[name] = field.Value
		}
	}

	out := make([]HiddenField, 0, len(merged))
	for name, value := range merged {
		out = append(out, HiddenField{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
