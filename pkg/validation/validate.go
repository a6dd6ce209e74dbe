package validation

import (
	"strings"

	"github.com/goliatone/go-vortex/pkg/model"
)

// Result is the outcome of validating one field value.
type Result struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Err returns the failure as a FieldError, or nil when the value was accepted.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return FieldError{Field: r.Field, Message: r.Message}
}

// Validate runs every rule declared on field, cross-field rules included,
// against value. values supplies the peer fields cross rules compare with.
func Validate(field model.Field, value string, values map[string]string, env Env) Result {
	return run(field, value, values, env, true)
}

// ValidateField runs the single-field rules only. Confirmation style rules
// are skipped so a half-filled form never reports a mismatch early.
func ValidateField(field model.Field, value string, env Env) Result {
	return run(field, value, nil, env, false)
}

// ValidateStep validates a whole step submission. Per-field rules run for
// every field; cross-field rules run only once all fields pass on their own.
// The accepted map contains exactly the step's fields and is nil when errs is
// non-empty.
func ValidateStep(fields []model.Field, input map[string]string, env Env) (accepted map[string]string, errs Errors) {
	errs = Errors{}
	values := make(map[string]string, len(fields))
	for _, field := range fields {
		value := input[field.Name]
		values[field.Name] = value
		if res := ValidateField(field, value, env); !res.Valid {
			errs.Add(field.Name, res.Message)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	for _, field := range fields {
		for _, rule := range field.Validations {
			if !rule.Cross() {
				continue
			}
			if msg := evaluate(field, rule, values[field.Name], values, env); msg != "" {
				errs.Add(field.Name, msg)
				break
			}
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return values, nil
}

func run(field model.Field, value string, values map[string]string, env Env, cross bool) Result {
	res := Result{Field: field.Name, Value: value, Valid: true}
	if optionalEmpty(field, value) {
		return res
	}

	// Required fields without rules still reject blanks; otherwise the
	// declared rules decide, so their messages win over a generic one.
	if field.Required && len(field.Validations) == 0 {
		rule := model.ValidationRule{Kind: model.ValidationRuleRequired}
		if msg := evaluate(field, rule, value, values, env); msg != "" {
			return reject(res, msg)
		}
	}

	for _, rule := range field.Validations {
		if rule.Cross() && !cross {
			continue
		}
		if msg := evaluate(field, rule, value, values, env); msg != "" {
			return reject(res, msg)
		}
	}
	return res
}

func optionalEmpty(field model.Field, value string) bool {
	if strings.TrimSpace(value) != "" {
		return false
	}
	return !field.Required && !field.HasRule(model.ValidationRuleRequired)
}

func reject(res Result, msg string) Result {
	res.Valid = false
	res.Message = msg
	return res
}
