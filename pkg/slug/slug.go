// Package slug turns free-text place names into stable keys: URL slugs for
// suggestion ids and folded forms for equality checks.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Letters that do not decompose under NFD.
var asciiReplacer = strings.NewReplacer("ı", "i", "ø", "o", "ß", "ss", "đ", "d", "ł", "l")

var folder = cases.Fold()

// Generate creates a URL-friendly slug from the given name. Diacritics are
// stripped so "Bāndra West" and "Bandra West" share a slug.
//
// Examples:
//   - "Vijay Nagar, Indore" → "vijay-nagar-indore"
//   - "Bāndra (West)" → "bandra-west"
//   - "Hello   World!" → "hello-world"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = asciiReplacer.Replace(stripMarks(s))
	s = slugRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Join slugs each non-empty part and joins them with hyphens.
func Join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := Generate(p); g != "" {
			out = append(out, g)
		}
	}
	return strings.Join(out, "-")
}

// Normalize trims, collapses internal whitespace to single spaces and applies
// Unicode case folding. Two names are the same place name when their
// normalized forms are equal.
func Normalize(name string) string {
	return folder.String(strings.Join(strings.Fields(name), " "))
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
