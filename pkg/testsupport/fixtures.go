package testsupport

import (
	"bytes"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-vortex/components/countries"
	"github.com/goliatone/go-vortex/pkg/flow"
	"github.com/goliatone/go-vortex/pkg/flowschema"
)

// Today is the fixed date tests validate ages against.
var Today = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

// Clock is a manually advanced clock safe for concurrent use.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock returns a clock set to Today.
func NewClock() *Clock {
	return &Clock{t: Today}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// Registry loads the embedded flow definitions with the country options
// wired, the same way the site does.
func Registry(t *testing.T) *flow.Registry {
	t.Helper()

	registry := flow.NewRegistry()
	err := flowschema.LoadInto(registry, flowschema.EmbeddedFS(),
		flowschema.WithOptionSource("countries", countries.ModelOptions),
	)
	if err != nil {
		t.Fatalf("load flows: %v", err)
	}
	return registry
}

// Definition returns one embedded flow definition.
func Definition(t *testing.T, id string) flow.Definition {
	t.Helper()

	def, err := Registry(t).Get(id)
	if err != nil {
		t.Fatalf("definition %q: %v", id, err)
	}
	return def
}

// ValidProfile returns inputs that pass each step of the profile flow.
func ValidProfile() []map[string]string {
	return []map[string]string{
		{"country": "India", "address": "221B Baker Street, Mumbai", "birthdate": "1990-05-04"},
		{"panNumber": "1234567890", "employment": "Salaried"},
		{"aadharFile": "upload-aadhar", "passportFile": "upload-passport", "selfieFile": "upload-selfie"},
	}
}

// ValidSignup returns inputs that pass the signup step.
func ValidSignup() map[string]string {
	return map[string]string{
		"fullName":        "Ada Lovelace",
		"email":           "ada@example.com",
		"password":        "Abcdefg1!",
		"confirmPassword": "Abcdefg1!",
	}
}

// DecodeJSON unmarshals a response body into a generic map.
func DecodeJSON(t *testing.T, body []byte) map[string]any {
	t.Helper()
	out := map[string]any{}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode json %q: %v", body, err)
	}
	return out
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
