package render

import "strings"

// MergeFormErrors joins form-level message lists, trimming whitespace and
// dropping blanks and repeats. Order of first appearance is kept.
func MergeFormErrors(existing []string, extras ...string) []string {
	seen := make(map[string]struct{}, len(existing)+len(extras))
	var out []string
	for _, list := range [][]string{existing, extras} {
		for _, message := range list {
			message = strings.TrimSpace(message)
			if message == "" {
				continue
			}
			if _, dup := seen[message]; dup {
				continue
			}
			seen[message] = struct{}{}
			out = append(out, message)
		}
	}
	return out
}
