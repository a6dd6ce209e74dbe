package countries

import (
	"sort"
	"strings"
)

// Entry is one search result.
type Entry struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Search filters names case-insensitively. Prefix matches sort ahead of
// substring matches, then alphabetically. A limit of zero or less keeps
// every match.
func Search(names []string, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var prefix, contains []string
	for _, name := range names {
		lower := strings.ToLower(name)
		switch {
		case strings.HasPrefix(lower, q):
			prefix = append(prefix, name)
		case strings.Contains(lower, q):
			contains = append(contains, name)
		}
	}
	sort.Strings(prefix)
	sort.Strings(contains)

	out := append(prefix, contains...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
