package vanilla

import "strings"

func componentControlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "vx-" + trimmed
}

func componentErrorID(name string) string {
	controlID := componentControlID(name)
	if controlID == "" {
		return ""
	}
	return controlID + "-error"
}

// sanitizeClassList drops tokens that would collide with the generated
// control ids.
func sanitizeClassList(value string) string {
	tokens := strings.Fields(value)
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, "vx-") && !isChromeToken(token) {
			continue
		}
		keep = append(keep, token)
	}
	return strings.Join(keep, " ")
}

func isChromeToken(token string) bool {
	switch ChromeClass(token) {
	case ClassForm, ClassHeader, ClassProgress, ClassField, ClassActions, ClassErrors:
		return true
	default:
		return false
	}
}
