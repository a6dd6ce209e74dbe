package tui

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-vortex/pkg/flow"
	"github.com/goliatone/go-vortex/pkg/render"
)

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithMaxRejections stops the run after n rejected submissions. Zero keeps
// prompting until the flow completes.
func WithMaxRejections(n int) RunnerOption {
	return func(r *Runner) {
		if n >= 0 {
			r.maxRejections = n
		}
	}
}

// WithBackNavigation offers to return to the previous step before each step
// after the first.
func WithBackNavigation(enabled bool) RunnerOption {
	return func(r *Runner) {
		r.allowBack = enabled
	}
}

// WithRunnerLogger sets the logger used for run diagnostics.
func WithRunnerLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner walks a flow from its first step to completion in the terminal.
type Runner struct {
	controller    *flow.Controller
	renderer      *Renderer
	maxRejections int
	allowBack     bool
	logger        *zap.Logger
}

// NewRunner binds a controller to a renderer.
func NewRunner(controller *flow.Controller, renderer *Renderer, options ...RunnerOption) *Runner {
	r := &Runner{
		controller: controller,
		renderer:   renderer,
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Run prompts for every step of flowID and returns the completed transition.
// Rejected steps are asked again with their messages shown inline.
func (r *Runner) Run(ctx context.Context, flowID string) (flow.Transition, error) {
	return r.Resume(ctx, flow.State{Flow: flowID, Step: 1, Record: flow.Record{}})
}

// Resume continues a flow from state.
func (r *Runner) Resume(ctx context.Context, state flow.State) (flow.Transition, error) {
	def, err := r.controller.Definition(state.Flow)
	if err != nil {
		return flow.Transition{State: state}, err
	}
	driver := r.renderer.Driver()

	var (
		errs       map[string][]string
		last       map[string]string
		rejections int
	)
	for {
		if err := ctx.Err(); err != nil {
			return flow.Transition{State: state}, err
		}

		if r.allowBack && state.Step > 1 && errs == nil {
			prev, _ := def.StepAt(state.Step - 1)
			back, err := driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Go back to %q?", prev.Title)})
			if err != nil {
				return flow.Transition{State: state}, err
			}
			if back {
				if state, err = r.controller.Back(state); err != nil {
					return flow.Transition{State: state}, err
				}
				last = nil
				continue
			}
		}

		form, err := def.FormModel(state.Step)
		if err != nil {
			return flow.Transition{State: state}, err
		}
		progress := render.ProgressFromForm(form)
		heading := form.Summary
		if progress.Enabled() {
			heading = fmt.Sprintf("Step %d of %d: %s", progress.Step, progress.Steps, form.Summary)
		}
		if err := driver.Info(ctx, r.renderer.theme.InfoPrefix+heading); err != nil {
			return flow.Transition{State: state}, err
		}

		values, err := r.renderer.Collect(ctx, form, render.RenderOptions{
			Values:   state.Record.Merge(last),
			Errors:   errs,
			Progress: progress,
		})
		if err != nil {
			return flow.Transition{State: state}, err
		}

		tr, err := r.controller.Submit(ctx, state, values)
		if err != nil {
			return tr, err
		}

		switch tr.Outcome {
		case flow.OutcomeRejected:
			rejections++
			r.logger.Debug("step rejected", zap.String("flow", def.ID), zap.Int("step", state.Step), zap.Int("rejections", rejections))
			if r.maxRejections > 0 && rejections >= r.maxRejections {
				return tr, ErrTooManyRetries
			}
			errs = tr.Errors
			last = values
			state = tr.State
		case flow.OutcomeAdvanced:
			errs, last = nil, nil
			state = tr.State
		case flow.OutcomeCompleted:
			return tr, nil
		default:
			return tr, fmt.Errorf("tui: unexpected outcome %q", tr.Outcome)
		}
	}
}
