package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-vortex/pkg/validation"
)

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithCompleter binds the completion collaborator for a flow.
func WithCompleter(flowID string, completer Completer) ControllerOption {
	return func(c *Controller) {
		if flowID == "" || completer == nil {
			return
		}
		c.completers[flowID] = completer
	}
}

// WithClock overrides the clock used by age based rules.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		if now != nil {
			c.env.Now = now
		}
	}
}

// WithLogger sets the logger used for transition events.
func WithLogger(logger *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller applies transitions for registered flows and hands completed
// records to their Completer. It keeps no per-instance state: callers own
// the State values and pass them in on every call.
type Controller struct {
	registry   *Registry
	completers map[string]Completer
	env        validation.Env
	logger     *zap.Logger
}

// NewController builds a controller over registry.
func NewController(registry *Registry, options ...ControllerOption) *Controller {
	if registry == nil {
		registry = NewRegistry()
	}
	c := &Controller{
		registry:   registry,
		completers: make(map[string]Completer),
		env:        validation.Env{Now: time.Now},
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Registry exposes the definitions the controller serves.
func (c *Controller) Registry() *Registry {
	return c.registry
}

// Env returns the validation environment used for submissions.
func (c *Controller) Env() validation.Env {
	return c.env
}

// Start returns the initial state of flowID.
func (c *Controller) Start(flowID string) (State, error) {
	def, err := c.registry.Get(flowID)
	if err != nil {
		return State{}, err
	}
	return Start(def), nil
}

// Definition returns the definition behind state.
func (c *Controller) Definition(flowID string) (Definition, error) {
	return c.registry.Get(flowID)
}

// Submit applies input to state. When the final step is accepted the flow's
// Completer runs once with the merged record. A completer failure leaves the
// returned state on the final step with the record intact so the visitor can
// retry.
func (c *Controller) Submit(ctx context.Context, state State, input map[string]string) (Transition, error) {
	def, err := c.registry.Get(state.Flow)
	if err != nil {
		return Transition{State: state}, err
	}

	tr, err := Submit(def, state, input, c.env)
	if err != nil {
		return tr, err
	}

	log := c.logger.With(zap.String("flow", def.ID), zap.Int("step", state.Step))
	switch tr.Outcome {
	case OutcomeRejected:
		log.Debug("flow step rejected", zap.Strings("fields", tr.Errors.Fields()))
		return tr, nil
	case OutcomeAdvanced:
		log.Debug("flow step accepted", zap.Int("next", tr.State.Step))
		return tr, nil
	}

	completer, ok := c.completers[def.ID]
	if !ok {
		log.Info("flow completed without completer")
		return tr, nil
	}

	completion, err := completer.Complete(ctx, def.ID, tr.Record)
	if err != nil {
		retained := state.Clone()
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			log.Debug("flow completion rejected", zap.Strings("fields", fieldErrs.Fields()))
			return Transition{Outcome: OutcomeRejected, State: retained, Errors: fieldErrs.Clone()}, nil
		}
		log.Warn("flow completion failed", zap.Error(err))
		return Transition{Outcome: OutcomeFailed, State: retained}, fmt.Errorf("flow: complete %s: %w", def.ID, err)
	}

	log.Info("flow completed", zap.String("redirect", completion.Redirect))
	tr.Completion = completion
	return tr, nil
}

// Back moves state one step backwards.
func (c *Controller) Back(state State) (State, error) {
	if !c.registry.Has(state.Flow) {
		return state, fmt.Errorf("%w: %q", ErrUnknownFlow, state.Flow)
	}
	return Back(state), nil
}
