package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrich(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		metadata map[string]any
		expected string
	}{
		{
			name:     "no recognized keys",
			content:  "some content",
			metadata: map[string]any{"company_id": "acme", "id_raw": "faq.txt"},
			expected: "some content",
		},
		{
			name:    "identity fields in fixed order",
			content: "doc",
			metadata: map[string]any{
				"zone":    "Abidjan",
				"name":    "Acme",
				"sector":  "mode",
				"ai_name": "Jessica",
			},
			expected: "doc Acme Jessica mode Abidjan",
		},
		{
			name:    "delivery zone with names and single price",
			content: "doc",
			metadata: map[string]any{
				"delivery_zone": "centre",
				"zone_names":    []string{"Cocody", "Plateau"},
				"price":         1500,
			},
			expected: "doc centre Cocody Plateau 1500 FCFA",
		},
		{
			name:    "price range needs both bounds",
			content: "doc",
			metadata: map[string]any{
				"price_min": 2000,
			},
			expected: "doc",
		},
		{
			name:    "price range with both bounds",
			content: "doc",
			metadata: map[string]any{
				"price_min": 2000,
				"price_max": 2500,
			},
			expected: "doc 2000 FCFA 2500 FCFA",
		},
		{
			name:    "zero prices skipped",
			content: "doc",
			metadata: map[string]any{
				"price":     0,
				"price_min": 0,
				"price_max": 0,
			},
			expected: "doc",
		},
		{
			name:    "location type underscores become spaces",
			content: "doc",
			metadata: map[string]any{
				"location_type":      "online_only",
				"has_physical_store": false,
			},
			expected: "doc online only en ligne uniquement",
		},
		{
			name:    "physical store token",
			content: "doc",
			metadata: map[string]any{
				"has_physical_store": true,
			},
			expected: "doc boutique physique",
		},
		{
			name:    "payment tokens",
			content: "doc",
			metadata: map[string]any{
				"phone":            "+225 01 02 03 04",
				"payment_methods":  []string{"Wave", "Orange Money"},
				"acompte_required": true,
			},
			expected: "doc +225 01 02 03 04 Wave Orange Money acompte obligatoire",
		},
		{
			name:    "acompte not required is silent",
			content: "doc",
			metadata: map[string]any{
				"acompte_required": false,
			},
			expected: "doc",
		},
		{
			name:    "questions count",
			content: "doc",
			metadata: map[string]any{
				"questions_count": 3,
			},
			expected: "doc 3 questions",
		},
		{
			name:    "float count from a json round trip",
			content: "doc",
			metadata: map[string]any{
				"questions_count": float64(4),
			},
			expected: "doc 4 questions",
		},
		{
			name:     "empty metadata",
			content:  "doc",
			metadata: map[string]any{},
			expected: "doc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Enrich(tt.content, tt.metadata))
		})
	}
}

func TestEnrich_DoesNotMutateMetadata(t *testing.T) {
	metadata := map[string]any{"name": "Acme"}
	Enrich("doc", metadata)
	assert.Equal(t, map[string]any{"name": "Acme"}, metadata)
}
