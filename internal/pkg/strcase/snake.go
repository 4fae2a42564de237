package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts a string to snake_case. Acronym runs stay together,
// so "userID" becomes "user_id" and "HTTPServer" becomes "http_server".
func ToLowerSnake(s string) string {
	runes := []rune(s)

	var b strings.Builder
	b.Grow(len(s) + len(s)/4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && boundaryBefore(runes, i) {
			b.WriteRune('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// boundaryBefore reports whether a word break sits before position i, which
// holds an upper-case rune. That happens after a lower-case rune or digit,
// or where an acronym run ends and a normal word starts.
func boundaryBefore(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
		return true
	}
	return false
}
