package vortex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-vortex/components/countries"
	"github.com/goliatone/go-vortex/internal/config"
	"github.com/goliatone/go-vortex/pkg/auth"
	"github.com/goliatone/go-vortex/pkg/flow"
	"github.com/goliatone/go-vortex/pkg/flowschema"
	"github.com/goliatone/go-vortex/pkg/model"
	"github.com/goliatone/go-vortex/pkg/openapi"
	"github.com/goliatone/go-vortex/pkg/render"
	"github.com/goliatone/go-vortex/pkg/renderers/tui"
	"github.com/goliatone/go-vortex/pkg/renderers/vanilla"
	"github.com/goliatone/go-vortex/pkg/site"
)

// Flow ids shipped with the binary.
const (
	FlowSignup    = "signup"
	FlowLogin     = "login"
	FlowTwoFactor = "two-factor"
	FlowProfile   = "profile"
)

// App is the wired application: flow definitions, their completers, the
// stores behind them and the site serving it all.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Flows     *flow.Controller
	Forms     *render.Registry
	Accounts  auth.AccountStore
	TwoFactor *auth.TwoFactor
	Sessions  *auth.SessionIssuer
	Uploads   *auth.MemoryUploads
	Profiles  *auth.ProfileStore
	API       *openapi.Document
	Site      *site.Site

	now     func() time.Time
	closers []io.Closer
}

// AppOption customises New.
type AppOption func(*App)

// WithAppClock overrides the time source handed to every component.
func WithAppClock(now func() time.Time) AppOption {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// New wires an App from cfg. Close releases the account store.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, options ...AppOption) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{Config: cfg, Logger: logger, now: time.Now}
	for _, opt := range options {
		if opt != nil {
			opt(app)
		}
	}

	registry, err := LoadFlows(cfg.Flows.Dir)
	if err != nil {
		return nil, err
	}

	if err := app.openAccounts(ctx); err != nil {
		return nil, err
	}
	app.TwoFactor = auth.NewTwoFactor(auth.Policy{
		Code:        cfg.Auth.TwoFactor.Code,
		MaxAttempts: cfg.Auth.TwoFactor.MaxAttempts,
		TTL:         cfg.Auth.TwoFactor.TTL,
	}, app.now)
	app.Sessions, err = auth.NewSessionIssuer(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, app.now)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Uploads = auth.NewMemoryUploads()
	app.Profiles = auth.NewProfileStore()
	app.Flows = flow.NewController(registry, app.completers(registry)...)

	app.Forms = render.NewRegistry()
	forms, err := vanilla.New()
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("vortex: form renderer: %w", err)
	}
	app.Forms.MustRegister(forms)

	app.API, err = openapi.Default(ctx)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Site, err = site.New(site.Dependencies{
		Flows:     app.Flows,
		Forms:     app.Forms,
		TwoFactor: app.TwoFactor,
		Sessions:  app.Sessions,
		Uploads:   app.Uploads,
		API:       app.API,
	},
		site.WithLogger(logger.Named("site")),
		site.WithClock(app.now),
		site.WithIdleTTL(cfg.Flows.IdleTTL),
		site.WithSecureCookies(cfg.Server.SecureCookies),
		site.WithRequireSession(cfg.Auth.RequireSession),
		site.WithTheme(cfg.Theme.Name, cfg.Theme.Variant),
	)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

// LoadFlows returns a registry holding the embedded flow definitions. When
// dir is set, definitions found there replace embedded ones with the same id.
func LoadFlows(dir string) (*flow.Registry, error) {
	registry := flow.NewRegistry()
	options := []flowschema.Option{
		flowschema.WithOptionSource("countries", countries.ModelOptions),
	}
	if err := flowschema.LoadInto(registry, flowschema.EmbeddedFS(), options...); err != nil {
		return nil, fmt.Errorf("vortex: load embedded flows: %w", err)
	}
	if dir == "" {
		return registry, nil
	}
	if err := flowschema.LoadInto(registry, os.DirFS(dir), options...); err != nil {
		return nil, fmt.Errorf("vortex: load flows from %s: %w", dir, err)
	}
	return registry, nil
}

func (a *App) openAccounts(ctx context.Context) error {
	switch a.Config.Storage.Driver {
	case "sqlite":
		store, err := auth.OpenSQLite(ctx, a.Config.Storage.DSN)
		if err != nil {
			return err
		}
		a.Accounts = store
		a.closers = append(a.closers, store)
	default:
		a.Accounts = auth.NewMemoryStore()
	}
	return nil
}

// completers binds each known flow to its completion collaborator. The
// redirect of each flow comes from its definition metadata.
func (a *App) completers(registry *flow.Registry) []flow.ControllerOption {
	redirect := func(id string) string {
		def, err := registry.Get(id)
		if err != nil {
			return ""
		}
		return def.Metadata["redirect"]
	}
	log := a.Logger.Named("auth")
	return []flow.ControllerOption{
		flow.WithClock(a.now),
		flow.WithLogger(a.Logger.Named("flow")),
		flow.WithCompleter(FlowSignup, auth.SignupCompleter{
			Store:    a.Accounts,
			Redirect: redirect(FlowSignup),
			Now:      a.now,
			Logger:   log,
		}),
		flow.WithCompleter(FlowLogin, auth.LoginCompleter{
			Store:        a.Accounts,
			TwoFactor:    a.TwoFactor,
			Redirect:     redirect(FlowLogin),
			AllowUnknown: a.Config.Auth.AllowUnknown,
			Logger:       log,
		}),
		flow.WithCompleter(FlowTwoFactor, auth.TwoFactorCompleter{
			TwoFactor: a.TwoFactor,
			Sessions:  a.Sessions,
			Redirect:  redirect(FlowTwoFactor),
			Logger:    log,
		}),
		flow.WithCompleter(FlowProfile, auth.ProfileCompleter{
			Profiles:       a.Profiles,
			Redirect:       redirect(FlowProfile),
			RequireSession: a.Config.Auth.RequireSession,
			Now:            a.now,
			Logger:         log,
		}),
	}
}

// Server wraps the site in an HTTP server configured from the app config.
func (a *App) Server() (*site.Server, error) {
	return site.NewServer(a.Site, site.ServerConfig{
		Addr:          a.Config.Server.Addr,
		ReadTimeout:   a.Config.Server.ReadTimeout,
		WriteTimeout:  a.Config.Server.WriteTimeout,
		ShutdownGrace: a.Config.Server.ShutdownGrace,
		SweepInterval: sweepInterval(a.Config.Flows.IdleTTL),
	})
}

func sweepInterval(idle time.Duration) time.Duration {
	if idle <= 0 {
		return 0
	}
	if every := idle / 2; every > time.Second {
		return every
	}
	return time.Second
}

// Uploader stores local files for terminal flows in the app upload store.
func (a *App) Uploader() tui.Uploader {
	return func(ctx context.Context, field model.Field, path string) (string, error) {
		file, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", path, err)
		}
		defer file.Close()
		name := filepath.Base(path)
		upload, err := a.Uploads.Put(ctx, name, mime.TypeByExtension(filepath.Ext(name)), file)
		if err != nil {
			return "", err
		}
		a.Logger.Debug("file uploaded", zap.String("field", field.Name), zap.String("ref", upload.Ref))
		return upload.Ref, nil
	}
}

// Close releases held resources.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
