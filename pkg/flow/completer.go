package flow

import "context"

// Completion is what a Completer reports back once it has consumed a record.
type Completion struct {
	Redirect string            `json:"redirect,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

// Completer receives the full record of a finished flow. Returning
// validation.Errors rejects the final step with field messages instead of
// failing the flow.
type Completer interface {
	Complete(ctx context.Context, flowID string, record Record) (Completion, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, flowID string, record Record) (Completion, error)

// Complete calls fn.
func (fn CompleterFunc) Complete(ctx context.Context, flowID string, record Record) (Completion, error) {
	return fn(ctx, flowID, record)
}
