package slug

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDash(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple", input: "Acme Shop", expected: "acme-shop"},
		{name: "diacritics", input: "Côte d'Ivoire", expected: "cote-divoire"},
		{name: "underscores collapse", input: "foo_bar__baz", expected: "foo-bar-baz"},
		{name: "punctuation dropped", input: "don't stop!", expected: "dont-stop"},
		{name: "leading and trailing separators", input: "  --hello--  ", expected: "hello"},
		{name: "empty input", input: "", expected: DefaultID},
		{name: "whitespace only", input: "   ", expected: DefaultID},
		{name: "symbols only", input: "!!!", expected: DefaultID},
		{name: "digits survive", input: "Lot de 3", expected: "lot-de-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Dash(tt.input))
		})
	}
}

func TestUnderscore(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple", input: "acme-shop-identite", expected: "acme_shop_identite"},
		{name: "diacritics", input: "livraison-zones-périphériques", expected: "livraison_zones_peripheriques"},
		{name: "spaces", input: "paiement support", expected: "paiement_support"},
		{name: "empty input", input: "", expected: DefaultID},
		{name: "mixed case", input: "FAQ", expected: "faq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Underscore(tt.input))
		})
	}
}

func TestSlugAlphabet(t *testing.T) {
	dashRe := regexp.MustCompile(`^[a-z0-9-]+$`)
	underscoreRe := regexp.MustCompile(`^[a-z0-9_]*$`)

	inputs := []string{
		"Acme Shop", "Côte d'Ivoire", "   ", "!!!", "___", "Thé vert 500g",
		"LIVRAISON ABIDJAN - ZONES PÉRIPHÉRIQUES", "a", "123",
	}
	for _, input := range inputs {
		assert.Regexp(t, dashRe, Dash(input), "Dash(%q)", input)
		assert.Regexp(t, underscoreRe, Underscore(input), "Underscore(%q)", input)
	}
}

func TestDashIdempotent(t *testing.T) {
	inputs := []string{"Acme Shop", "Côte d'Ivoire", "foo_bar", "livraison-zones-centrales"}
	for _, input := range inputs {
		once := Dash(input)
		assert.Equal(t, once, Dash(once), "Dash should be a fixed point of itself for %q", input)
	}
}

func TestVariantID(t *testing.T) {
	tests := []struct {
		name        string
		productName string
		variantName string
		price       int
		expected    string
	}{
		{
			name:        "variant without product prefix",
			productName: "Savon noir",
			variantName: "Lot de 3",
			price:       4500,
			expected:    "savon noir lot de 3 4500 fcfa",
		},
		{
			name:        "variant already prefixed",
			productName: "Savon noir",
			variantName: "Savon noir premium",
			price:       6000,
			expected:    "savon noir premium 6000 fcfa",
		},
		{
			name:        "zero price omits suffix",
			productName: "Widget",
			variantName: "Standard",
			price:       0,
			expected:    "widget standard",
		},
		{
			name:        "diacritics normalized",
			productName: "Thé vert",
			variantName: "Boîte 20 sachets",
			price:       2500,
			expected:    "the vert boite 20 sachets 2500 fcfa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, VariantID(tt.productName, tt.variantName, tt.price))
		})
	}
}

func TestStripDiacritics(t *testing.T) {
	assert.Equal(t, "cafe creme", StripDiacritics("café crème"))
	assert.Equal(t, "PERIPHERIQUES", StripDiacritics("PÉRIPHÉRIQUES"))
	assert.Equal(t, "plain", StripDiacritics("plain"))
}
