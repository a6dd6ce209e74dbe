package validation

import (
	"fmt"
	"sort"
	"strings"
)

// FieldError is the single failure kind produced by validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// Errors maps field names to their rejection messages. Validation emits one
// message per field; the slice shape matches what renderers consume.
type Errors map[string][]string

// Add appends a message for field, ignoring blank input.
func (e Errors) Add(field, message string) {
	field = strings.TrimSpace(field)
	message = strings.TrimSpace(message)
	if field == "" || message == "" {
		return
	}
	e[field] = append(e[field], message)
}

// Has reports whether field has at least one message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// First returns the first message recorded for field.
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Fields returns the failing field names in sorted order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for field, msgs := range e {
		if len(msgs) > 0 {
			out = append(out, field)
		}
	}
	sort.Strings(out)
	return out
}

// List flattens the map into FieldError values sorted by field.
func (e Errors) List() []FieldError {
	var out []FieldError
	for _, field := range e.Fields() {
		for _, msg := range e[field] {
			out = append(out, FieldError{Field: field, Message: msg})
		}
	}
	return out
}

// Clone returns a deep copy.
func (e Errors) Clone() Errors {
	if e == nil {
		return nil
	}
	out := make(Errors, len(e))
	for field, msgs := range e {
		out[field] = append([]string(nil), msgs...)
	}
	return out
}

func (e Errors) Error() string {
	list := e.List()
	if len(list) == 0 {
		return "validation: no errors"
	}
	parts := make([]string, 0, len(list))
	for _, fe := range list {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation: " + strings.Join(parts, "; ")
}
