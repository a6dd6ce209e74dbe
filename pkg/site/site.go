package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/goliatone/go-vortex/components/countries"
	"github.com/goliatone/go-vortex/pkg/auth"
	"github.com/goliatone/go-vortex/pkg/chat"
	"github.com/goliatone/go-vortex/pkg/dashboard"
	"github.com/goliatone/go-vortex/pkg/flow"
	"github.com/goliatone/go-vortex/pkg/openapi"
	"github.com/goliatone/go-vortex/pkg/render"
	"github.com/goliatone/go-vortex/pkg/render/template"
	"github.com/goliatone/go-vortex/pkg/render/template/gotemplate"
	"github.com/goliatone/go-vortex/pkg/renderers/vanilla"
)

// Dependencies are the collaborators a Site serves. Flows and Forms are
// required; everything else falls back to an in-memory default.
type Dependencies struct {
	Flows *flow.Controller
	// Forms renders flow steps. The vanilla renderer is expected unless
	// WithFormRenderer names another one.
	Forms *render.Registry

	TwoFactor *auth.TwoFactor
	Sessions  *auth.SessionIssuer
	Uploads   auth.UploadStore

	Fixtures  *dashboard.Fixtures
	Widgets   *dashboard.Registry
	Formatter *dashboard.Formatter
	Assistant *chat.Assistant
	Board     *chat.Board

	API       *openapi.Document
	Countries *countries.Component

	// Pages overrides the page template engine, mostly for tests.
	Pages template.TemplateRenderer
	// Assets overrides the static files served under /assets/.
	Assets fs.FS
}

// Site is the HTTP surface: marketing and dashboard pages, the HTML flow
// pages and the JSON API.
type Site struct {
	flows     *flow.Controller
	forms     *render.Registry
	twoFactor *auth.TwoFactor
	sessions  *auth.SessionIssuer
	uploads   auth.UploadStore
	fixtures  dashboard.Fixtures
	widgets   *dashboard.Registry
	formatter dashboard.Formatter
	assistant *chat.Assistant
	board     *chat.Board
	api       *openapi.Document
	validator *openapi.Validator
	countries *countries.Component
	pages     template.TemplateRenderer
	assets    fs.FS

	visitors *visitorStore
	// instances holds flow states driven through the JSON API, keyed by
	// instance id.
	instances *visitorStore
	router    *mux.Router

	logger         *zap.Logger
	now            func() time.Time
	idleTTL        time.Duration
	secureCookies  bool
	requireSession bool
	formRenderer   string
	themes         theme.ThemeSelector
	themeName      string
	themeVariant   string
	theme          themeView
}

// New assembles a Site.
func New(deps Dependencies, options ...Option) (*Site, error) {
	if deps.Flows == nil {
		return nil, errors.New("site: flow controller is required")
	}
	if deps.Forms == nil {
		return nil, errors.New("site: form renderer registry is required")
	}

	s := &Site{
		flows:        deps.Flows,
		forms:        deps.Forms,
		twoFactor:    deps.TwoFactor,
		sessions:     deps.Sessions,
		uploads:      deps.Uploads,
		widgets:      deps.Widgets,
		assistant:    deps.Assistant,
		board:        deps.Board,
		api:          deps.API,
		countries:    deps.Countries,
		pages:        deps.Pages,
		assets:       deps.Assets,
		logger:       zap.NewNop(),
		now:          time.Now,
		idleTTL:      30 * time.Minute,
		formRenderer: vanilla.Name,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if err := s.applyDefaults(deps); err != nil {
		return nil, err
	}
	if !s.forms.Has(s.formRenderer) {
		return nil, fmt.Errorf("site: form renderer %q is not registered", s.formRenderer)
	}

	selection, err := s.themes.Select(s.themeName, s.themeVariant)
	if err != nil {
		return nil, fmt.Errorf("site: select theme: %w", err)
	}
	s.theme = newThemeView(RendererConfig(selection))

	s.visitors = newVisitorStore(s.idleTTL, s.now)
	s.instances = newVisitorStore(s.idleTTL, s.now)
	s.router = s.routes()
	return s, nil
}

func (s *Site) applyDefaults(deps Dependencies) error {
	if s.twoFactor == nil {
		s.twoFactor = auth.NewTwoFactor(auth.Policy{}, s.now)
	}
	if s.uploads == nil {
		s.uploads = auth.NewMemoryUploads()
	}
	if deps.Fixtures != nil {
		s.fixtures = *deps.Fixtures
	} else {
		fixtures, err := dashboard.Default()
		if err != nil {
			return fmt.Errorf("site: load fixtures: %w", err)
		}
		s.fixtures = fixtures
	}
	if s.widgets == nil {
		s.widgets = dashboard.NewRegistry()
	}
	if deps.Formatter != nil {
		s.formatter = *deps.Formatter
	} else {
		s.formatter = dashboard.NewFormatter(language.AmericanEnglish)
	}
	if s.assistant == nil {
		s.assistant = chat.NewAssistant(s.fixtures.Chat.Reply, chat.WithClock(s.now), chat.WithLogger(s.logger))
	}
	if s.board == nil {
		seed := make([]chat.Post, 0, len(s.fixtures.Posts))
		for _, p := range s.fixtures.Posts {
			seed = append(seed, chat.Post{ID: "seed-" + fmt.Sprint(len(seed)+1), Author: p.Author, Body: p.Body, PostedAt: s.now()})
		}
		s.board = chat.NewBoard(s.now, seed...)
	}
	if s.api == nil {
		doc, err := openapi.Default(context.Background())
		if err != nil {
			return fmt.Errorf("site: load api description: %w", err)
		}
		s.api = doc
	}
	validator, err := openapi.NewValidator(s.api)
	if err != nil {
		return fmt.Errorf("site: api validator: %w", err)
	}
	s.validator = validator
	if s.countries == nil {
		s.countries = countries.New()
	}
	if s.pages == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(TemplatesFS()))
		if err != nil {
			return fmt.Errorf("site: page templates: %w", err)
		}
		if err := engine.GlobalContext(map[string]any{"brand": brandName}); err != nil {
			return fmt.Errorf("site: page templates: %w", err)
		}
		s.pages = engine
	}
	if s.assets == nil {
		s.assets = vanilla.AssetsFS()
	}
	if s.themes == nil {
		selector, err := NewThemeSelector()
		if err != nil {
			return err
		}
		s.themes = selector
	}
	return nil
}

// Handler returns the routed site.
func (s *Site) Handler() http.Handler {
	return s.router
}

// Sweep forgets idle visitors and API flow instances and returns how many
// were dropped.
func (s *Site) Sweep() int {
	removed := s.visitors.sweep() + s.instances.sweep()
	if removed > 0 {
		s.logger.Debug("idle visitors removed", zap.Int("count", removed))
	}
	return removed
}

func (s *Site) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.logRequests, s.attachSession)

	router.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", http.FileServer(http.FS(s.assets))))

	router.HandleFunc("/", s.handleLanding).Methods(http.MethodGet)
	router.HandleFunc("/dashboard", s.members(s.handleDashboard)).Methods(http.MethodGet)
	router.HandleFunc("/ai", s.members(s.handleAI)).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/investments", s.members(s.handleInvestments)).Methods(http.MethodGet)
	router.HandleFunc("/community", s.members(s.handleCommunity)).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet, http.MethodPost)

	for _, id := range s.flows.Registry().List() {
		def, err := s.flows.Definition(id)
		if err != nil || def.Path == "" {
			continue
		}
		router.HandleFunc(def.Path, s.flowPage(def.ID)).Methods(http.MethodGet, http.MethodPost)
	}

	validate := s.validator.Middleware(writeRequestError)
	api := func(path string, h http.Handler, methods ...string) {
		router.Handle(path, validate(h)).Methods(methods...)
	}
	api("/api/flows", http.HandlerFunc(s.apiListFlows), http.MethodGet)
	api("/api/flows/{flow}", http.HandlerFunc(s.apiGetFlow), http.MethodGet)
	api("/api/flows/{flow}/validate", http.HandlerFunc(s.apiValidate), http.MethodPost)
	api("/api/flows/{flow}/submit", http.HandlerFunc(s.apiSubmit), http.MethodPost)
	api("/api/flows/{flow}/back", http.HandlerFunc(s.apiBack), http.MethodPost)
	api(s.countries.Path(), s.countries, http.MethodGet, http.MethodHead)
	api("/api/dashboard", http.HandlerFunc(s.apiDashboard), http.MethodGet)
	api("/api/chat", http.HandlerFunc(s.apiChat), http.MethodPost)
	api("/api/community/posts", http.HandlerFunc(s.apiListPosts), http.MethodGet)
	api("/api/community/posts", http.HandlerFunc(s.apiPublishPost), http.MethodPost)
	api("/api/uploads", http.HandlerFunc(s.apiUpload), http.MethodPost)
	router.Handle("/openapi.json", s.api.Handler()).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	return router
}

// logRequests records one line per request.
func (s *Site) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", s.now().Sub(start)),
		)
	})
}

// attachSession puts the verified session carried by the session cookie in
// the request context. Invalid or expired tokens are cleared.
func (s *Site) attachSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" || s.sessions == nil {
			next.ServeHTTP(w, r)
			return
		}
		session, err := s.sessions.Parse(cookie.Value)
		if err != nil {
			s.logger.Debug("session rejected", zap.Error(err))
			clearCookie(w, sessionCookieName, s.secureCookies)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
	})
}

// members guards pages that need a signed in visitor when sessions are
// required.
func (s *Site) members(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.requireSession {
			if _, ok := auth.SessionFromContext(r.Context()); !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
