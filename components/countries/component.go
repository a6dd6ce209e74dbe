package countries

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// DefaultPath is where the site mounts the search endpoint.
const DefaultPath = "/api/countries"

// Component serves country searches as JSON.
type Component struct {
	path         string
	names        []string
	defaultLimit int
	maxLimit     int
	listAll      bool
}

// ComponentOption customises New.
type ComponentOption func(*Component)

// WithPath changes the mount path.
func WithPath(path string) ComponentOption {
	return func(c *Component) {
		if path != "" {
			c.path = path
		}
	}
}

// WithNames replaces the embedded list. The slice is copied.
func WithNames(names []string) ComponentOption {
	return func(c *Component) {
		c.names = append([]string(nil), names...)
	}
}

// WithLimits sets the limit used when the request has none and the cap any
// requested limit is clamped to.
func WithLimits(defaultLimit, maxLimit int) ComponentOption {
	return func(c *Component) {
		if defaultLimit > 0 {
			c.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			c.maxLimit = maxLimit
		}
	}
}

// WithEmptyQueryListing controls whether a blank query lists every country
// or returns nothing.
func WithEmptyQueryListing(enabled bool) ComponentOption {
	return func(c *Component) {
		c.listAll = enabled
	}
}

// New builds a component over the embedded list.
func New(options ...ComponentOption) *Component {
	c := &Component{
		path:         DefaultPath,
		defaultLimit: 20,
		maxLimit:     50,
		listAll:      true,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.names == nil {
		c.names, _ = DefaultCountries()
	}
	return c
}

// Path returns the mount path.
func (c *Component) Path() string {
	return c.path
}

// Lookup runs a search with the component limits applied. A limit of zero
// uses the default.
func (c *Component) Lookup(query string, limit int) []Entry {
	switch {
	case limit < 0:
		return []Entry{}
	case limit == 0:
		limit = c.defaultLimit
	case limit > c.maxLimit:
		limit = c.maxLimit
	}

	var names []string
	if isBlank(query) {
		if c.listAll {
			names = c.names
			if len(names) > limit {
				names = names[:limit]
			}
		}
	} else {
		names = Search(c.names, query, limit)
	}

	out := make([]Entry, 0, len(names))
	for _, name := range names {
		out = append(out, Entry{Value: name, Label: name})
	}
	return out
}

type searchResponse struct {
	Data  []Entry `json:"data"`
	Total int     `json:"total"`
}

func (c *Component) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil {
		limit = 0
	}
	entries := c.Lookup(query.Get("q"), limit)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(searchResponse{Data: entries, Total: len(entries)})
}
