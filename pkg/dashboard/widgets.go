package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetBalance = "balance"
	WidgetCoins   = "coins"
)

// Builder produces the view data of one widget.
type Builder func(data Fixtures, f Formatter) (any, error)

// View is a built widget ready for a template.
type View struct {
	Name string `json:"name"`
	Data any    `json:"data"`
}

type rule struct {
	name     string
	priority int
	build    Builder
	order    int
}

// Registry orders the widgets shown on the portfolio page. Higher priority
// renders first; ties fall back to registration order. Registering a name
// again replaces the earlier builder.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
	next  int
}

// NewRegistry constructs a registry with the built-in widgets registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds or replaces a widget.
func (r *Registry) Register(name string, priority int, build Builder) {
	if r == nil || build == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := rule{name: trimmed, priority: priority, build: build, order: r.next}
	r.next++
	for i, existing := range r.rules {
		if existing.name == trimmed {
			r.rules[i] = entry
			return
		}
	}
	r.rules = append(r.rules, entry)
}

// Names returns widget names in render order.
func (r *Registry) Names() []string {
	rules := r.sorted()
	out := make([]string, 0, len(rules))
	for _, entry := range rules {
		out = append(out, entry.name)
	}
	return out
}

// Build renders the named widgets, or every widget when names is empty.
func (r *Registry) Build(data Fixtures, f Formatter, names ...string) ([]View, error) {
	rules := r.sorted()
	filtered := len(names) > 0
	want := make(map[string]bool, len(names))
	unknown := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		want[name] = true
		unknown[name] = true
	}

	views := make([]View, 0, len(rules))
	for _, entry := range rules {
		delete(unknown, entry.name)
		if filtered && !want[entry.name] {
			continue
		}
		out, err := entry.build(data, f)
		if err != nil {
			return nil, fmt.Errorf("dashboard: widget %s: %w", entry.name, err)
		}
		views = append(views, View{Name: entry.name, Data: out})
	}
	for name := range unknown {
		return nil, fmt.Errorf("dashboard: unknown widget %q", name)
	}
	return views, nil
}

func (r *Registry) sorted() []rule {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	return rules
}

// BalanceView is the "My Balance" card.
type BalanceView struct {
	Title    string `json:"title"`
	Window   string `json:"window"`
	Total    string `json:"total"`
	Change   string `json:"change"`
	Percent  string `json:"percent"`
	Positive bool   `json:"positive"`
	// Line is an SVG path over a 100x30 viewBox.
	Line string `json:"line"`
	Area string `json:"area"`
}

// CoinView is one row of the "My Top Coins" card.
type CoinView struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Amount   string `json:"amount"`
	Value    string `json:"value"`
	Change   string `json:"change"`
	Positive bool   `json:"positive"`
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetBalance, 90, func(data Fixtures, f Formatter) (any, error) {
		b := data.Balance
		line, area := ChartPaths(b.Chart)
		return BalanceView{
			Title:    b.Title,
			Window:   b.Window,
			Total:    f.Money(b.Total),
			Change:   f.SignedMoney(b.Change),
			Percent:  f.Percent(b.ChangePercent),
			Positive: b.Change >= 0,
			Line:     line,
			Area:     area,
		}, nil
	})

	r.Register(WidgetCoins, 80, func(data Fixtures, f Formatter) (any, error) {
		coins := make([]CoinView, 0, len(data.Coins))
		for _, c := range data.Coins {
			coins = append(coins, CoinView{
				Symbol:   c.Symbol,
				Name:     c.Name,
				Icon:     c.Icon,
				Amount:   c.Amount,
				Value:    f.Money(c.Value),
				Change:   f.Percent(c.Change),
				Positive: c.Change >= 0,
			})
		}
		return coins, nil
	})
}

// ChartPaths turns chart points into the line and filled area paths of the
// balance sparkline. Points are spread evenly over x 0..100; y is used as is.
func ChartPaths(points []float64) (line, area string) {
	if len(points) == 0 {
		return "", ""
	}
	var b strings.Builder
	step := 0.0
	if len(points) > 1 {
		step = 100 / float64(len(points)-1)
	}
	for i, y := range points {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString(" L")
		}
		fmt.Fprintf(&b, "%s,%s", trimFloat(float64(i)*step), trimFloat(y))
	}
	line = b.String()
	last := trimFloat(float64(len(points)-1) * step)
	area = fmt.Sprintf("%s L%s,30 L0,30 Z", line, last)
	return line, area
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
