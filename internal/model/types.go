package model

// FieldType is the simplified enum for the input kinds a step can collect.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypePassword FieldType = "password"
	FieldTypeTextArea FieldType = "textarea"
	FieldTypeDate     FieldType = "date"
	FieldTypeSelect   FieldType = "select"
	FieldTypeFile     FieldType = "file"
	FieldTypeCode     FieldType = "code"
)

const (
	ValidationRuleRequired       = "required"
	ValidationRuleEmail          = "email"
	ValidationRuleMinLength      = "minLength"
	ValidationRuleLength         = "length"
	ValidationRuleDigits         = "digits"
	ValidationRulePattern        = "pattern"
	ValidationRuleStrongPassword = "strongPassword"
	ValidationRuleMatches        = "matches"
	ValidationRuleMinAge         = "minAge"
	ValidationRuleUpload         = "upload"
)

// ValidationRule represents a single constraint applied to a field. Length
// and age thresholds live in Params["value"], regular expressions in
// Params["pattern"] and the peer field of a confirmation in Params["field"].
// Params["message"] overrides the default rejection message.
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Param returns a trimmed parameter value.
func (r ValidationRule) Param(key string) string {
	if r.Params == nil {
		return ""
	}
	return r.Params[key]
}

// Cross reports whether the rule depends on another field's value and must
// only run when the whole step is submitted.
func (r ValidationRule) Cross() bool {
	return r.Kind == ValidationRuleMatches
}

// Option is a selectable choice for select fields.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field models an individual input inside a step.
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Default     string            `json:"default,omitempty"`
	Options     []Option          `json:"options,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// HasRule reports whether the field declares a rule of the given kind.
func (f Field) HasRule(kind string) bool {
	for _, rule := range f.Validations {
		if rule.Kind == kind {
			return true
		}
	}
	return false
}

// FormModel is what renderers consume for a single step of a flow.
type FormModel struct {
	ID          string            `json:"id"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Fields      []Field           `json:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
