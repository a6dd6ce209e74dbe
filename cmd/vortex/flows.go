package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	vortex "github.com/goliatone/go-vortex"
	"github.com/goliatone/go-vortex/pkg/auth"
	"github.com/goliatone/go-vortex/pkg/flow"
	"github.com/goliatone/go-vortex/pkg/renderers/tui"
)

type flowFlags struct {
	maxRejections int
	back          bool
}

func (f *flowFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxRejections, "max-rejections", 0, "give up after this many rejected submissions (0 keeps asking)")
	cmd.Flags().BoolVar(&f.back, "back", true, "offer to return to the previous step")
}

// flowResult is what a finished terminal flow prints.
type flowResult struct {
	Flow     string            `json:"flow"`
	Redirect string            `json:"redirect,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
	Record   flow.Record       `json:"record,omitempty"`
}

func newSignupCommand(env *environment) *cobra.Command {
	var flags flowFlags
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := contextOf(cmd)
			app, err := env.application(ctx)
			if err != nil {
				return err
			}
			tr, err := env.runFlow(ctx, app, flags, vortex.FlowSignup)
			if err != nil {
				return err
			}
			return env.print(app, vortex.FlowSignup, tr)
		},
	}
	flags.bind(cmd)
	return cmd
}

func newLoginCommand(env *environment) *cobra.Command {
	var flags flowFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and verify the emailed code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := contextOf(cmd)
			app, err := env.application(ctx)
			if err != nil {
				return err
			}
			tr, err := env.runFlow(ctx, app, flags, vortex.FlowLogin)
			if err != nil {
				return err
			}
			challenge := tr.Completion.Data["challenge"]
			if challenge == "" {
				return errors.New("login did not issue a verification challenge")
			}
			env.logger.Info("verification code sent", zap.String("email", tr.Completion.Data["email"]))

			tr, err = env.runFlow(auth.WithChallenge(ctx, challenge), app, flags, vortex.FlowTwoFactor)
			if err != nil {
				return err
			}
			return env.print(app, vortex.FlowTwoFactor, tr)
		},
	}
	flags.bind(cmd)
	return cmd
}

func newProfileCommand(env *environment) *cobra.Command {
	var (
		flags flowFlags
		token string
	)
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Complete the investor profile",
		Long: `profile walks the identity, address and verification steps.
Files asked for by the verification step are read from local paths.
Pass the token printed by "vortex login" with --token when sessions are required.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := contextOf(cmd)
			app, err := env.application(ctx)
			if err != nil {
				return err
			}
			if token != "" {
				session, err := app.Sessions.Parse(token)
				if err != nil {
					return fmt.Errorf("session token: %w", err)
				}
				ctx = auth.WithSession(ctx, session)
			}
			tr, err := env.runFlow(ctx, app, flags, vortex.FlowProfile)
			if err != nil {
				return err
			}
			return env.print(app, vortex.FlowProfile, tr)
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&token, "token", "", "session token from vortex login")
	return cmd
}

func (e *environment) runFlow(ctx context.Context, app *vortex.App, flags flowFlags, flowID string) (flow.Transition, error) {
	renderer, err := tui.New(
		tui.WithPromptDriver(e.driver(e.out)),
		tui.WithUploader(app.Uploader()),
		tui.WithValidationEnv(app.Flows.Env()),
		tui.WithLogger(e.logger.Named("tui")),
	)
	if err != nil {
		return flow.Transition{}, err
	}
	runner := tui.NewRunner(app.Flows, renderer,
		tui.WithMaxRejections(flags.maxRejections),
		tui.WithBackNavigation(flags.back),
		tui.WithRunnerLogger(e.logger.Named("runner")),
	)
	tr, err := runner.Run(ctx, flowID)
	if errors.Is(err, tui.ErrAborted) {
		return tr, fmt.Errorf("%s cancelled", flowID)
	}
	return tr, err
}

func (e *environment) print(app *vortex.App, flowID string, tr flow.Transition) error {
	def, err := app.Flows.Definition(flowID)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(flowResult{
		Flow:     flowID,
		Redirect: tr.Completion.Redirect,
		Data:     tr.Completion.Data,
		Record:   def.Redact(tr.Record),
	}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.out, string(out))
	return err
}
