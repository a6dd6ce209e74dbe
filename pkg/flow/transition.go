package flow

import (
	"fmt"

	"github.com/goliatone/go-vortex/pkg/validation"
)

// Outcome classifies a transition.
type Outcome string

const (
	OutcomeRejected  Outcome = "rejected"
	OutcomeAdvanced  Outcome = "advanced"
	OutcomeCompleted Outcome = "completed"
	OutcomeBack      Outcome = "back"
	OutcomeFailed    Outcome = "failed"
)

// Transition is the result of applying input to a state.
type Transition struct {
	Outcome Outcome           `json:"outcome"`
	State   State             `json:"state"`
	Errors  validation.Errors `json:"errors,omitempty"`
	// Record carries the full merged record on completion; the state itself
	// drops it since the flow is over.
	Record     Record     `json:"record,omitempty"`
	Completion Completion `json:"completion,omitempty"`
}

// Submit validates input against the current step of state. A rejected
// submission returns the state unchanged together with one message per failed
// field. An accepted one merges the step's values into the record and either
// advances or, on the final step, completes the flow.
func Submit(def Definition, state State, input map[string]string, env validation.Env) (Transition, error) {
	if err := checkState(def, state); err != nil {
		return Transition{State: state}, err
	}
	step, _ := def.StepAt(state.Step)

	accepted, errs := validation.ValidateStep(step.Fields, input, env)
	if len(errs) > 0 {
		return Transition{Outcome: OutcomeRejected, State: state.Clone(), Errors: errs}, nil
	}

	merged := state.Record.Merge(accepted)
	if def.Final(state.Step) {
		return Transition{
			Outcome: OutcomeCompleted,
			State:   State{Flow: def.ID, Step: state.Step, Done: true},
			Record:  merged,
		}, nil
	}

	return Transition{
		Outcome: OutcomeAdvanced,
		State:   State{Flow: def.ID, Step: state.Step + 1, Record: merged},
	}, nil
}

// Back moves one step backwards without validating anything. The record is
// kept so values re-appear when the visitor returns. Step 1 is a no-op.
func Back(state State) State {
	next := state.Clone()
	if next.Done {
		return next
	}
	if next.Step > 1 {
		next.Step--
	}
	return next
}

func checkState(def Definition, state State) error {
	if state.Flow != "" && state.Flow != def.ID {
		return fmt.Errorf("%w: %q is not %q", ErrFlowMismatch, state.Flow, def.ID)
	}
	if state.Done {
		return ErrFlowCompleted
	}
	if _, ok := def.StepAt(state.Step); !ok {
		return fmt.Errorf("%w: %s step %d", ErrStepOutOfRange, def.ID, state.Step)
	}
	return nil
}
