package model

import (
	"strings"
	"unicode"
)

// acronyms are written in capitals wherever they appear in a field name.
var acronyms = map[string]string{
	"pan": "PAN",
	"otp": "OTP",
	"id":  "ID",
	"2fa": "2FA",
}

// FieldLabel derives the label shown for a flow field that declares none.
// Words are split at case changes, digits, underscores, dashes and spaces:
// "confirmPassword" reads "Confirm Password", "panNumber" reads "PAN Number".
func FieldLabel(name string) string {
	words := fieldWords(name)
	for i, word := range words {
		lower := strings.ToLower(word)
		if acronym, ok := acronyms[lower]; ok {
			words[i] = acronym
			continue
		}
		runes := []rune(lower)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func fieldWords(name string) []string {
	var (
		words   []string
		current []rune
		prev    rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
			prev = 0
			continue
		case prev != 0 && unicode.IsLower(prev) && unicode.IsUpper(r),
			prev != 0 && unicode.IsLetter(prev) && unicode.IsDigit(r),
			prev != 0 && unicode.IsDigit(prev) && unicode.IsLetter(r):
			flush()
		}
		current = append(current, r)
		prev = r
	}
	flush()
	return words
}
