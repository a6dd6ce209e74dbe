package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm     ChromeClass = "vx-form"
	ClassHeader   ChromeClass = "vx-form-header"
	ClassProgress ChromeClass = "vx-progress"
	ClassField    ChromeClass = "vx-field"
	ClassActions  ChromeClass = "vx-actions"
	ClassErrors   ChromeClass = "vx-errors"
)

// ChromeClasses are the classes applied to the form wrapper elements. Empty
// entries fall back to the defaults above.
type ChromeClasses struct {
	Form     string
	Header   string
	Progress string
	Field    string
	Actions  string
	Errors   string
}

func (c ChromeClasses) withDefaults() ChromeClasses {
	pick := func(value string, fallback ChromeClass) string {
		if cleaned := sanitizeClassList(value); cleaned != "" {
			return cleaned
		}
		return string(fallback)
	}
	return ChromeClasses{
		Form:     pick(c.Form, ClassForm),
		Header:   pick(c.Header, ClassHeader),
		Progress: pick(c.Progress, ClassProgress),
		Field:    pick(c.Field, ClassField),
		Actions:  pick(c.Actions, ClassActions),
		Errors:   pick(c.Errors, ClassErrors),
	}
}

func (c ChromeClasses) view() map[string]string {
	return map[string]string{
		"form":     c.Form,
		"header":   c.Header,
		"progress": c.Progress,
		"field":    c.Field,
		"actions":  c.Actions,
		"errors":   c.Errors,
	}
}
