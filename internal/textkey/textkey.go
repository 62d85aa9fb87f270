package textkey

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the comparison key for a free-text label: diacritics
// stripped, whitespace runs collapsed to one space, lowercased and trimmed.
func Normalize(value string) string {
	if value == "" {
		return ""
	}

	stripper := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, value)
	if err != nil {
		return ""
	}

	return strings.ToLower(strings.Join(strings.Fields(stripped), " "))
}

// Contains reports whether the normalized value contains the normalized token.
func Contains(value, token string) bool {
	key := Normalize(token)
	if key == "" {
		return false
	}
	return strings.Contains(Normalize(value), key)
}

// ContainsAny reports whether the normalized value contains any of the tokens.
func ContainsAny(value string, tokens []string) bool {
	key := Normalize(value)
	if key == "" {
		return false
	}
	for _, token := range tokens {
		tokenKey := Normalize(token)
		if tokenKey != "" && strings.Contains(key, tokenKey) {
			return true
		}
	}
	return false
}

// Display trims a cell value for output, turning embedded newlines into spaces.
func Display(value string) string {
	value = strings.ReplaceAll(value, "\r\n", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.TrimSpace(value)
}
