package dashboard

import (
	_ "embed"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var embeddedFixtures []byte

// Fixtures is the sample data set rendered by the dashboard pages.
type Fixtures struct {
	Hero        Hero        `yaml:"hero" json:"hero"`
	Sidebar     Sidebar     `yaml:"sidebar" json:"sidebar"`
	Balance     Balance     `yaml:"balance" json:"balance"`
	Coins       []Coin      `yaml:"coins" json:"coins"`
	Investments Investments `yaml:"investments" json:"investments"`
	News        []NewsItem  `yaml:"news" json:"news"`
	Calendar    Calendar    `yaml:"calendar" json:"calendar"`
	Chat        Chat        `yaml:"chat" json:"chat"`
	Posts       []Post      `yaml:"posts" json:"posts"`
}

type Hero struct {
	Tagline  string   `yaml:"tagline" json:"tagline"`
	Headline []string `yaml:"headline" json:"headline"`
	Body     string   `yaml:"body" json:"body"`
	Nav      []string `yaml:"nav" json:"nav"`
}

type Sidebar struct {
	User     SidebarUser      `yaml:"user" json:"user"`
	Sections []SidebarSection `yaml:"sections" json:"sections"`
	Promo    Promo            `yaml:"promo" json:"promo"`
}

type SidebarUser struct {
	Name   string `yaml:"name" json:"name"`
	Status string `yaml:"status" json:"status"`
}

type SidebarSection struct {
	Title string        `yaml:"title" json:"title"`
	Items []SidebarItem `yaml:"items" json:"items"`
}

type SidebarItem struct {
	Label  string `yaml:"label" json:"label"`
	Path   string `yaml:"path" json:"path"`
	Active bool   `yaml:"-" json:"active"`
}

type Promo struct {
	Title string `yaml:"title" json:"title"`
	Text  string `yaml:"text" json:"text"`
}

type Balance struct {
	Title         string    `yaml:"title" json:"title"`
	Window        string    `yaml:"window" json:"window"`
	Total         float64   `yaml:"total" json:"total"`
	Change        float64   `yaml:"change" json:"change"`
	ChangePercent float64   `yaml:"changePercent" json:"changePercent"`
	Chart         []float64 `yaml:"chart" json:"chart"`
}

type Coin struct {
	Symbol string  `yaml:"symbol" json:"symbol"`
	Name   string  `yaml:"name" json:"name"`
	Icon   string  `yaml:"icon" json:"icon"`
	Amount string  `yaml:"amount" json:"amount"`
	Value  float64 `yaml:"value" json:"value"`
	Change float64 `yaml:"change" json:"change"`
}

type Investments struct {
	Features   []string   `yaml:"features" json:"features"`
	Categories []Category `yaml:"categories" json:"categories"`
}

type Category struct {
	Title       string    `yaml:"title" json:"title"`
	Description string    `yaml:"description" json:"description"`
	Products    []Product `yaml:"products" json:"products"`
}

type Product struct {
	Name          string  `yaml:"name" json:"name"`
	APY           string  `yaml:"apy" json:"apy"`
	Risk          string  `yaml:"risk" json:"risk"`
	Term          string  `yaml:"term" json:"term"`
	MinInvestment float64 `yaml:"minInvestment" json:"minInvestment"`
	Gradient      string  `yaml:"gradient" json:"gradient"`
}

type NewsItem struct {
	Source   string `yaml:"source" json:"source"`
	Title    string `yaml:"title" json:"title"`
	TimeAgo  string `yaml:"timeAgo" json:"timeAgo"`
	ImageURL string `yaml:"imageUrl" json:"imageUrl"`
}

type Chat struct {
	Title        string        `yaml:"title" json:"title"`
	Intro        string        `yaml:"intro" json:"intro"`
	Reply        string        `yaml:"reply" json:"reply"`
	Disclaimer   string        `yaml:"disclaimer" json:"disclaimer"`
	QuickActions []QuickAction `yaml:"quickActions" json:"quickActions"`
}

type QuickAction struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// Post is a community discussion entry.
type Post struct {
	Author string `yaml:"author" json:"author"`
	Body   string `yaml:"body" json:"body"`
}

// Default returns the embedded sample data.
func Default() (Fixtures, error) {
	return Parse(embeddedFixtures)
}

// MustDefault is Default that panics, for wiring code that ships the fixture.
func MustDefault() Fixtures {
	fx, err := Default()
	if err != nil {
		panic(err)
	}
	return fx
}

// LoadFS reads a fixture file from fsys.
func LoadFS(fsys fs.FS, path string) (Fixtures, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("dashboard: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML fixture and checks the calendar is usable.
func Parse(data []byte) (Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return Fixtures{}, fmt.Errorf("dashboard: parse fixtures: %w", err)
	}
	if err := fx.Calendar.validate(); err != nil {
		return Fixtures{}, err
	}
	return fx, nil
}
