package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	vortex "github.com/goliatone/go-vortex"
	"github.com/goliatone/go-vortex/internal/config"
	"github.com/goliatone/go-vortex/internal/logger"
	"github.com/goliatone/go-vortex/pkg/renderers/tui"
)

// environment is what every command shares: the loaded config, the logger
// and the streams and prompt driver terminal flows use.
type environment struct {
	configFile string
	logLevel   string
	logFormat  string

	out    io.Writer
	driver func(out io.Writer) tui.PromptDriver

	cfg    config.Config
	logger *zap.Logger
	app    *vortex.App
}

func newEnvironment() *environment {
	return &environment{out: os.Stdout, driver: tui.NewSurveyDriver}
}

func newRootCommand(env *environment) *cobra.Command {
	root := &cobra.Command{
		Use:   "vortex",
		Short: "Vortex trading site and onboarding flows",
		Long: `vortex serves the Vortex marketing site and mock trading dashboard,
and runs the signup, login and profile flows in the terminal.

Configuration is read from vortex.yaml in the working directory (or the
file given with --config) and VORTEX_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.load(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return env.close()
		},
	}
	root.SetOut(env.out)

	flags := root.PersistentFlags()
	flags.StringVar(&env.configFile, "config", "", "config file (default is vortex.yaml in . or ./config)")
	flags.StringVar(&env.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&env.logFormat, "log-format", "", "log format: json or human")

	root.AddCommand(
		newServeCommand(env),
		newSignupCommand(env),
		newLoginCommand(env),
		newProfileCommand(env),
		newOpenAPICommand(env),
	)
	return root
}

// load reads the config, applies flag overrides and builds the logger.
func (e *environment) load(cmd *cobra.Command) error {
	cfg, err := config.Load(e.configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = e.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = e.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Format: cfg.Log.Format, Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.logger = log
	if cfg.File != "" {
		log.Debug("config loaded", zap.String("file", cfg.File))
	}
	return nil
}

// application wires the app on first use.
func (e *environment) application(ctx context.Context) (*vortex.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	app, err := vortex.New(ctx, e.cfg, e.logger)
	if err != nil {
		return nil, fmt.Errorf("start vortex: %w", err)
	}
	e.app = app
	return app, nil
}

func (e *environment) close() error {
	var err error
	if e.app != nil {
		err = e.app.Close()
		e.app = nil
	}
	if e.logger != nil {
		_ = e.logger.Sync()
	}
	return err
}
