package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes an identity string for comparison.
//
// Only characters with a canonical decomposition lose their marks ("ë" -> "e",
// "å" -> "a"). Letters such as "ø" or look-alikes from other scripts stay
// distinct, so "Škoda" and "Skoda" compare equal while a Cyrillic "С" never
// equals a Latin "C".
func Normalize(s string) string {
	// Convert to lowercase
	s = strings.ToLower(s)

	// Remove accents
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}

	// Collapse whitespace, trims as a side effect
	return strings.Join(strings.Fields(s), " ")
}

// SameIdentity reports whether two identity strings normalize to the same form
func SameIdentity(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
