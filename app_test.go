package vortex_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	vortex "github.com/goliatone/go-vortex"
	"github.com/goliatone/go-vortex/internal/config"
	"github.com/goliatone/go-vortex/pkg/auth"
	"github.com/goliatone/go-vortex/pkg/flow"
	"github.com/goliatone/go-vortex/pkg/testsupport"
)

func newApp(t *testing.T, mutate func(*config.Config)) *vortex.App {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	app, err := vortex.New(context.Background(), cfg, nil, vortex.WithAppClock(testsupport.NewClock().Now))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNew_Defaults(t *testing.T) {
	app := newApp(t, nil)

	if diff := cmp.Diff([]string{"login", "profile", "signup", "two-factor"}, app.Flows.Registry().List()); diff != "" {
		t.Fatalf("flows mismatch (-want +got):\n%s", diff)
	}
	if app.Sessions.TTL() != 24*time.Hour {
		t.Fatalf("expected default session ttl, got %s", app.Sessions.TTL())
	}

	rec := httptest.NewRecorder()
	app.Site.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login page, got %d", rec.Code)
	}
}

func TestNew_SQLiteAccounts(t *testing.T) {
	app := newApp(t, func(cfg *config.Config) {
		cfg.Storage.Driver = "sqlite"
		cfg.Storage.DSN = ":memory:"
	})

	tr, err := app.Flows.Submit(context.Background(), mustStart(t, app, vortex.FlowSignup), testsupport.ValidSignup())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if diff := cmp.Diff("/complete-profile", tr.Completion.Redirect); diff != "" {
		t.Fatalf("redirect mismatch (-want +got):\n%s", diff)
	}
	account, err := app.Accounts.ByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("by email: %v", err)
	}
	if !auth.CheckPassword(account.PasswordHash, "Abcdefg1!") {
		t.Fatalf("expected stored password hash to match")
	}
}

func TestNew_TwoFactorPolicyFromConfig(t *testing.T) {
	app := newApp(t, func(cfg *config.Config) {
		cfg.Auth.TwoFactor.Code = "424242"
		cfg.Auth.TwoFactor.MaxAttempts = 3
	})

	want := auth.Policy{Code: "424242", MaxAttempts: 3}
	if diff := cmp.Diff(want, app.TwoFactor.Policy()); diff != "" {
		t.Fatalf("policy mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFlows_DirectoryOverrides(t *testing.T) {
	dir := t.TempDir()
	override := `id: signup
title: Join Vortex
path: /signup
steps:
  - id: account
    title: Create Account
    fields:
      - name: email
        type: email
        label: Email
        required: true
`
	if err := os.WriteFile(filepath.Join(dir, "signup.yaml"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	registry, err := vortex.LoadFlows(dir)
	if err != nil {
		t.Fatalf("load flows: %v", err)
	}
	def, err := registry.Get("signup")
	if err != nil {
		t.Fatalf("get signup: %v", err)
	}
	if def.Title != "Join Vortex" || len(def.Steps[0].Fields) != 1 {
		t.Fatalf("expected the override, got %+v", def)
	}
	if !registry.Has("profile") {
		t.Fatalf("expected embedded flows to remain")
	}
}

func TestUploader(t *testing.T) {
	app := newApp(t, nil)
	path := filepath.Join(t.TempDir(), "selfie.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	field, ok := mustDefinition(t, app, vortex.FlowProfile).Field("selfieFile")
	if !ok {
		t.Fatalf("expected selfieFile field")
	}
	ref, err := app.Uploader()(context.Background(), field, path)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	upload, ok := app.Uploads.Get(ref)
	if !ok {
		t.Fatalf("expected upload %q to be stored", ref)
	}
	if upload.Name != "selfie.png" || upload.Size != 3 || upload.ContentType != "image/png" {
		t.Fatalf("unexpected upload %+v", upload)
	}
}

func mustDefinition(t *testing.T, app *vortex.App, id string) flow.Definition {
	t.Helper()
	def, err := app.Flows.Definition(id)
	if err != nil {
		t.Fatalf("definition %q: %v", id, err)
	}
	return def
}

func mustStart(t *testing.T, app *vortex.App, id string) flow.State {
	t.Helper()
	state, err := app.Flows.Start(id)
	if err != nil {
		t.Fatalf("start %q: %v", id, err)
	}
	return state
}
