package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-vortex/pkg/model"
)

// DateLayout is the wire format for date fields.
const DateLayout = "2006-01-02"

const passwordSpecials = "@$!%*?&"

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-']+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)

var (
	patternMu    sync.RWMutex
	patternCache = map[string]*regexp.Regexp{}
)

// Env carries the ambient inputs rules may depend on.
type Env struct {
	Now func() time.Time
}

func (e Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// CheckRule reports whether a rule is well formed. Definitions are checked
// once at load time so evaluation can assume sane parameters.
func CheckRule(rule model.ValidationRule) error {
	switch rule.Kind {
	case model.ValidationRuleRequired,
		model.ValidationRuleEmail,
		model.ValidationRuleDigits,
		model.ValidationRuleStrongPassword,
		model.ValidationRuleUpload:
		return nil
	case model.ValidationRuleMinLength, model.ValidationRuleLength, model.ValidationRuleMinAge:
		n, err := strconv.Atoi(strings.TrimSpace(rule.Param("value")))
		if err != nil || n < 0 {
			return fmt.Errorf("validation: rule %s requires a non-negative integer value, got %q", rule.Kind, rule.Param("value"))
		}
		return nil
	case model.ValidationRulePattern:
		if _, err := compilePattern(rule.Param("pattern")); err != nil {
			return fmt.Errorf("validation: rule pattern: %w", err)
		}
		return nil
	case model.ValidationRuleMatches:
		if strings.TrimSpace(rule.Param("field")) == "" {
			return fmt.Errorf("validation: rule matches requires a field parameter")
		}
		return nil
	default:
		return fmt.Errorf("validation: unknown rule kind %q", rule.Kind)
	}
}

// evaluate returns an empty string when value satisfies rule, or the message
// to show otherwise.
func evaluate(field model.Field, rule model.ValidationRule, value string, values map[string]string, env Env) string {
	var ok bool
	switch rule.Kind {
	case model.ValidationRuleRequired:
		ok = strings.TrimSpace(value) != ""
	case model.ValidationRuleEmail:
		ok = emailPattern.MatchString(value)
	case model.ValidationRuleMinLength:
		ok = utf8.RuneCountInString(value) >= intParam(rule)
	case model.ValidationRuleLength:
		ok = utf8.RuneCountInString(value) == intParam(rule)
	case model.ValidationRuleDigits:
		ok = isDigits(value)
	case model.ValidationRulePattern:
		re, err := compilePattern(rule.Param("pattern"))
		ok = err == nil && re.MatchString(value)
	case model.ValidationRuleStrongPassword:
		ok = IsStrongPassword(value)
	case model.ValidationRuleMatches:
		ok = value == values[rule.Param("field")]
	case model.ValidationRuleMinAge:
		ok = meetsMinAge(value, intParam(rule), env.now())
	case model.ValidationRuleUpload:
		ok = true
	}
	if ok {
		return ""
	}
	return messageFor(field, rule)
}

func messageFor(field model.Field, rule model.ValidationRule) string {
	if msg := strings.TrimSpace(rule.Param("message")); msg != "" {
		return msg
	}
	label := field.Label
	if label == "" {
		label = model.FieldLabel(field.Name)
	}
	switch rule.Kind {
	case model.ValidationRuleRequired:
		return label + " is required"
	case model.ValidationRuleEmail:
		return "Please enter a valid email"
	case model.ValidationRuleMinLength:
		return fmt.Sprintf("%s must be at least %d characters", label, intParam(rule))
	case model.ValidationRuleLength:
		return fmt.Sprintf("%s must be exactly %d characters", label, intParam(rule))
	case model.ValidationRuleDigits:
		return label + " must contain only numbers"
	case model.ValidationRuleStrongPassword:
		return "Password must include uppercase, lowercase, number and special character"
	case model.ValidationRuleMatches:
		return label + " does not match"
	case model.ValidationRuleMinAge:
		return fmt.Sprintf("You must be at least %d years old", intParam(rule))
	default:
		return label + " is invalid"
	}
}

// IsStrongPassword reports whether value mixes lower and upper case letters,
// a digit and one of @$!%*?&, using nothing outside those classes.
func IsStrongPassword(value string) bool {
	var lower, upper, digit, special bool
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

// Age returns the difference in calendar years between birth and now.
func Age(birth, now time.Time) int {
	return now.Year() - birth.Year()
}

func meetsMinAge(value string, minAge int, now time.Time) bool {
	birth, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return Age(birth, now) >= minAge
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func intParam(rule model.ValidationRule) int {
	n, err := strconv.Atoi(strings.TrimSpace(rule.Param("value")))
	if err != nil {
		return 0
	}
	return n
}

func compilePattern(expr string) (*regexp.Regexp, error) {
	patternMu.RLock()
	re, ok := patternCache[expr]
	patternMu.RUnlock()
	if ok {
		return re, nil
	}

	compiled, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	patternMu.Lock()
	patternCache[expr] = compiled
	patternMu.Unlock()
	return compiled, nil
}
