package site

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-vortex/pkg/renderers/vanilla"
)

// Theme names shipped with the site.
const (
	DefaultTheme   = "vortex"
	VariantDark    = "dark"
	VariantLight   = "light"
	stylesheetKey  = "site.stylesheet"
	assetsPrefix   = "/assets"
	defaultVariant = VariantDark
)

// VortexManifest describes the site palette. The base tokens are the dark
// scheme; the light variant overrides the surfaces and text colours.
func VortexManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultTheme,
		Version: "1.0.0",
		Tokens: map[string]string{
			"vx-background-dark":   "#080808",
			"vx-background-card":   "#111111",
			"vx-accent-green":      "#4ade80",
			"vx-accent-green-dark": "#22c55e",
			"vx-text-primary":      "#ffffff",
			"vx-text-secondary":    "#a3a3a3",
			"vx-border":            "#1f2937",
			"vx-error":             "#ef4444",
			"vx-radius":            "0.75rem",
			"vx-font":              "Inter, sans-serif",
		},
		Assets: theme.Assets{
			Prefix: assetsPrefix,
			Files: map[string]string{
				stylesheetKey: vanilla.StylesheetName,
			},
		},
		Variants: map[string]theme.Variant{
			VariantDark: {},
			VariantLight: {
				Tokens: map[string]string{
					"vx-background-dark": "#f8fafc",
					"vx-background-card": "#ffffff",
					"vx-text-primary":    "#0f172a",
					"vx-text-secondary":  "#475569",
					"vx-border":          "#e2e8f0",
				},
			},
		},
	}
}

// ThemeSelector resolves theme and variant names against a fixed set of
// manifests. Empty names fall back to the defaults.
type ThemeSelector struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*ThemeSelector)(nil)

// NewThemeSelector registers manifests. The first manifest becomes the
// default theme.
func NewThemeSelector(manifests ...*theme.Manifest) (*ThemeSelector, error) {
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{VortexManifest()}
	}
	registry := theme.NewRegistry()
	s := &ThemeSelector{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultVariant: defaultVariant,
	}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("site: register theme %q: %w", manifest.Name, err)
		}
		s.manifests[manifest.Name] = manifest
		if s.defaultTheme == "" {
			s.defaultTheme = manifest.Name
		}
	}
	if s.defaultTheme == "" {
		return nil, fmt.Errorf("site: no theme manifests")
	}
	return s, nil
}

// Select implements theme.ThemeSelector.
func (s *ThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultTheme
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("site: unknown theme %q", name)
	}
	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = s.defaultVariant
	}
	if _, ok := manifest.Variants[variant]; !ok && len(manifest.Variants) > 0 {
		return nil, fmt.Errorf("site: theme %q has no variant %q", name, variant)
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// RendererConfig flattens a selection: variant tokens override the base,
// every token becomes a "--" prefixed CSS variable and asset keys resolve
// under the manifest prefix.
func RendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	variant := manifest.Variants[selection.Variant]

	tokens := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	for key, value := range variant.Tokens {
		tokens[key] = value
	}
	partials := make(map[string]string, len(manifest.Templates)+len(variant.Templates))
	for key, value := range manifest.Templates {
		partials[key] = value
	}
	for key, value := range variant.Templates {
		partials[key] = value
	}

	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		vars["--"+key] = value
	}

	files := make(map[string]string, len(manifest.Assets.Files)+len(variant.Assets.Files))
	for key, value := range manifest.Assets.Files {
		files[key] = value
	}
	for key, value := range variant.Assets.Files {
		files[key] = value
	}
	prefix := strings.TrimRight(manifest.Assets.Prefix, "/")
	if p := strings.TrimRight(variant.Assets.Prefix, "/"); p != "" {
		prefix = p
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  vars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			return prefix + "/" + file
		},
	}
}

// themeView is what the layout template needs from the active theme.
type themeView struct {
	Name       string `json:"name"`
	Variant    string `json:"variant"`
	Style      string `json:"style"`
	Stylesheet string `json:"stylesheet"`
}

func newThemeView(cfg *theme.RendererConfig) themeView {
	if cfg == nil {
		return themeView{Stylesheet: assetsPrefix + "/" + vanilla.StylesheetName}
	}
	view := themeView{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		Style:   cssVarsStyle(cfg.CSSVars),
	}
	if cfg.AssetURL != nil {
		view.Stylesheet = cfg.AssetURL(stylesheetKey)
	}
	if view.Stylesheet == "" {
		view.Stylesheet = assetsPrefix + "/" + vanilla.StylesheetName
	}
	return view
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
