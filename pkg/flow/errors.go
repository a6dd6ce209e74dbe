package flow

import "errors"

var (
	// ErrUnknownFlow is returned when a flow id has no registered definition.
	ErrUnknownFlow = errors.New("flow: unknown flow")
	// ErrFlowCompleted is returned when a completed flow receives input.
	ErrFlowCompleted = errors.New("flow: flow already completed")
	// ErrStepOutOfRange signals a state whose step index is outside the
	// definition.
	ErrStepOutOfRange = errors.New("flow: step out of range")
	// ErrFlowMismatch is returned when a state belongs to another flow.
	ErrFlowMismatch = errors.New("flow: state does not belong to flow")
)
