package site

import (
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"
)

// Option customises a Site.
type Option func(*Site)

// WithLogger sets the logger used for request and flow events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Site) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source of visitor expiry and the community
// board.
func WithClock(now func() time.Time) Option {
	return func(s *Site) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIdleTTL sets how long an untouched visitor, and the flow states it
// holds, is kept. Zero keeps visitors forever.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *Site) {
		if ttl >= 0 {
			s.idleTTL = ttl
		}
	}
}

// WithSecureCookies marks every cookie the site sets as Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Site) {
		s.secureCookies = secure
	}
}

// WithRequireSession sends visitors without a valid session cookie to the
// login page before the profile wizard and the dashboard pages.
func WithRequireSession(require bool) Option {
	return func(s *Site) {
		s.requireSession = require
	}
}

// WithThemeSelector replaces the built-in theme selector.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(s *Site) {
		if selector != nil {
			s.themes = selector
		}
	}
}

// WithTheme picks the theme and variant pages render with.
func WithTheme(name, variant string) Option {
	return func(s *Site) {
		s.themeName = strings.TrimSpace(name)
		s.themeVariant = strings.TrimSpace(variant)
	}
}

// WithFormRenderer selects the registered renderer used for flow steps.
func WithFormRenderer(name string) Option {
	return func(s *Site) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			s.formRenderer = trimmed
		}
	}
}
