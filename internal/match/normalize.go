package match

import "strings"

// NormalizeIdent folds an identifier for fuzzy matching: it is lowercased and
// stripped of separators (_, -, spaces, dots), so "clientOfficial",
// "client_official" and "Client-Official" compare equal.
func NormalizeIdent(s string) string {
	var result strings.Builder

	result.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if !isSeparator(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// isSeparator returns true if the rune is a common separator.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}
