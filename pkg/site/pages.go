package site

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/goliatone/go-vortex/pkg/auth"
	"github.com/goliatone/go-vortex/pkg/chat"
	"github.com/goliatone/go-vortex/pkg/dashboard"
)

// Layout shells.
const (
	shellLanding = "landing"
	shellAuth    = "auth"
	shellApp     = "app"
)

const (
	brandName      = "Vortex"
	layoutTemplate = "templates/layout"
	pagesDir       = "templates/pages/"
)

type layoutView struct {
	Title   string                 `json:"title"`
	Shell   string                 `json:"shell"`
	Theme   themeView              `json:"theme"`
	Sidebar *dashboard.SidebarView `json:"sidebar,omitempty"`
	Toggle  string                 `json:"toggle,omitempty"`
	Body    string                 `json:"body"`
}

// page describes one rendered page. Active names the sidebar item of app
// pages.
type page struct {
	Shell  string
	Title  string
	Active string
	Name   string
	Data   map[string]any
}

func (s *Site) renderPage(w http.ResponseWriter, r *http.Request, status int, p page) {
	data := p.Data
	if data == nil {
		data = map[string]any{}
	}
	session, signedIn := auth.SessionFromContext(r.Context())
	data["signed_in"] = signedIn
	if signedIn {
		data["session_email"] = session.Email
	}

	body, err := s.pages.RenderTemplate(pagesDir+p.Name, data)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	view := layoutView{Title: p.Title, Shell: p.Shell, Theme: s.theme, Body: body}
	if p.Shell == shellApp {
		open := r.URL.Query().Get("sidebar") == "open"
		sidebar := s.fixtures.SidebarFor(p.Active, open)
		view.Sidebar = &sidebar
		view.Toggle = r.URL.Path
		if !open {
			view.Toggle += "?sidebar=open"
		}
	}

	out, err := s.pages.RenderTemplate(layoutTemplate, view)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(out))
}

// fail logs err and answers with a bare 500; used when the page templates
// themselves cannot render.
func (s *Site) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("page render failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Site) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusNotFound, page{
		Shell: shellAuth,
		Title: "Not found",
		Name:  "error",
		Data: map[string]any{
			"heading": "Page not found",
			"message": "The page you are looking for does not exist.",
		},
	})
}

func (s *Site) handleLanding(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, page{
		Shell: shellLanding,
		Title: "Trade Smarter",
		Name:  "landing",
		Data:  map[string]any{"hero": s.fixtures.Hero},
	})
}

func (s *Site) handleDashboard(w http.ResponseWriter, r *http.Request) {
	widgets, err := s.widgets.Build(s.fixtures, s.formatter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.renderPage(w, r, http.StatusOK, page{
		Shell:  shellApp,
		Title:  "Portfolio",
		Active: "Portfolio",
		Name:   "dashboard",
		Data:   map[string]any{"widgets": widgets},
	})
}

func (s *Site) handleInvestments(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, page{
		Shell:  shellApp,
		Title:  "Investments",
		Active: "Investments",
		Name:   "investments",
		Data:   map[string]any{"investments": s.fixtures.InvestmentsFor(s.formatter)},
	})
}

// handleAI shows the visitor's conversation and, on POST, answers the
// submitted message.
func (s *Site) handleAI(w http.ResponseWriter, r *http.Request) {
	vid := s.visitors.identify(w, r, s.secureCookies)
	conversation := s.conversationFor(vid)

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if _, err := s.assistant.Send(r.Context(), conversation, r.PostForm.Get("message")); err != nil {
			s.fail(w, r, err)
			return
		}
		http.Redirect(w, r, "/ai", http.StatusSeeOther)
		return
	}

	messages, err := s.assistant.History(conversation)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.renderPage(w, r, http.StatusOK, page{
		Shell:  shellApp,
		Title:  "2Cents AI",
		Active: "2Cents AI",
		Name:   "ai",
		Data:   map[string]any{"chat": s.fixtures.Chat, "messages": messages},
	})
}

// conversationFor returns the open conversation of visitor vid, opening one
// when the visitor has none or it was dropped.
func (s *Site) conversationFor(vid string) string {
	id := s.visitors.conversation(vid)
	if id != "" {
		if _, err := s.assistant.History(id); err == nil {
			return id
		}
	}
	id = s.assistant.Open()
	s.visitors.setConversation(vid, id)
	return id
}

// handleCommunity renders news, the calendar for ?date= and the discussion
// board. POST publishes a post.
func (s *Site) handleCommunity(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	postError := ""
	selected, _ := strconv.Atoi(r.URL.Query().Get("date"))

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		selected, _ = strconv.Atoi(r.PostForm.Get("date"))
		author := ""
		if session, ok := auth.SessionFromContext(r.Context()); ok {
			author = session.Email
		}
		_, err := s.board.Publish(r.Context(), author, r.PostForm.Get("body"))
		switch {
		case err == nil:
			target := "/community"
			if s.fixtures.Calendar.Valid(selected) {
				target += "?date=" + strconv.Itoa(selected)
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		case errors.Is(err, chat.ErrEmptyPost):
			status, postError = http.StatusUnprocessableEntity, "Write something before posting"
		case errors.Is(err, chat.ErrPostTooLong):
			status, postError = http.StatusUnprocessableEntity, fmt.Sprintf("Posts are limited to %d characters", chat.MaxPostLength)
		default:
			s.fail(w, r, err)
			return
		}
	}

	s.renderPage(w, r, status, page{
		Shell:  shellApp,
		Title:  "Community",
		Active: "Community",
		Name:   "community",
		Data: map[string]any{
			"news":       s.fixtures.News,
			"calendar":   s.fixtures.Calendar.View(selected),
			"posts":      s.board.List(),
			"post_error": postError,
		},
	})
}

// handleLogout drops the session cookie and every flow the visitor holds.
func (s *Site) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(visitorCookieName); err == nil {
		if conversation := s.visitors.conversation(cookie.Value); conversation != "" {
			s.assistant.Close(conversation)
		}
		s.visitors.forget(cookie.Value)
	}
	clearCookie(w, sessionCookieName, s.secureCookies)
	clearCookie(w, visitorCookieName, s.secureCookies)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
