package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// newFolder returns a fresh chain. Transformers keep state and must not be shared.
func newFolder() transform.Transformer {
	return transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
		cases.Fold(),
	)
}

// NormalizeForMatch folds case, strips diacritics and drops punctuation and
// whitespace so "Élvis-Presley" and "elvis presley" compare equal.
func NormalizeForMatch(s string) string {
	folded, _, err := transform.String(newFolder(), s)
	if err != nil {
		folded = strings.ToLower(s)
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HasNormalizedPrefix reports whether value starts with prefix under NormalizeForMatch
func HasNormalizedPrefix(value, prefix string) bool {
	return strings.HasPrefix(NormalizeForMatch(value), NormalizeForMatch(prefix))
}

// EqualFold compares two strings case- and diacritic-insensitively, keeping punctuation
func EqualFold(a, b string) bool {
	fa, _, errA := transform.String(newFolder(), strings.TrimSpace(a))
	fb, _, errB := transform.String(newFolder(), strings.TrimSpace(b))
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}
	return fa == fb
}

// TitleCase capitalizes each word of s
func TitleCase(s string) string {
	return cases.Title(language.Und).String(strings.ToLower(s))
}

// DigitsOnly keeps only ASCII digits
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
