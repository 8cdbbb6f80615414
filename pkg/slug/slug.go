// Package slug provides deterministic identifier normalization for derived documents
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultID is returned when an input normalizes to nothing usable
const DefaultID = "doc"

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripDiacritics removes combining marks from a string (é -> e, ç -> c).
// Falls back to the input unchanged if the transform fails.
func StripDiacritics(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// Dash converts free text to a dash slug: lowercase, diacritics stripped,
// whitespace and underscore runs collapsed to a single dash, everything outside
// [a-z0-9-] dropped. Never empty: degraded input yields DefaultID.
func Dash(s string) string {
	return slugify(s, '-')
}

// Underscore converts free text to an underscore slug for record keys. Same
// rules as Dash with '_' as the separator; empty input yields DefaultID but
// non-empty input that reduces to nothing stays empty.
func Underscore(s string) string {
	if strings.TrimSpace(s) == "" {
		return DefaultID
	}
	normalized := StripDiacritics(strings.ToLower(strings.TrimSpace(s)))

	var result strings.Builder
	prevSep := true // swallow leading separators
	for _, r := range normalized {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			result.WriteRune(r)
			prevSep = false
		default:
			if !prevSep {
				result.WriteRune('_')
				prevSep = true
			}
		}
	}
	return strings.TrimRight(result.String(), "_")
}

func slugify(s string, sep rune) string {
	if strings.TrimSpace(s) == "" {
		return DefaultID
	}
	normalized := StripDiacritics(strings.ToLower(strings.TrimSpace(s)))

	var result strings.Builder
	prevSep := true
	for _, r := range normalized {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			result.WriteRune(r)
			prevSep = false
		case unicode.IsSpace(r), r == '_', r == sep:
			if !prevSep {
				result.WriteRune(sep)
				prevSep = true
			}
		}
	}
	out := strings.TrimRight(result.String(), string(sep))
	if out == "" {
		return DefaultID
	}
	return out
}

// NormalizeWords lowercases, strips diacritics, turns non-alphanumerics into
// spaces and collapses whitespace. Used for human-readable composite IDs.
func NormalizeWords(s string) string {
	normalized := StripDiacritics(strings.ToLower(s))

	var result strings.Builder
	prevSpace := true
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result.WriteRune(r)
			prevSpace = false
		} else if !prevSpace {
			result.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(result.String())
}

// VariantID builds the canonical identifier for a product variant. The variant
// name is prefixed with the product name unless it already embeds it, and the
// price is appended with the currency suffix when set.
func VariantID(productName, variantName string, price int) string {
	prod := NormalizeWords(productName)
	variant := NormalizeWords(variantName)

	id := variant
	if !strings.HasPrefix(variant, prod) {
		id = strings.TrimSpace(prod + " " + variant)
	}
	if price > 0 {
		id = strings.TrimSpace(id + " " + strconv.Itoa(price) + " fcfa")
	}
	return id
}
