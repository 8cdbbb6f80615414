package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZETA-AI-ORG/onboard/pkg/models"
)

const markedDeliveryText = `=== LIVRAISON ABIDJAN - ZONES CENTRALES ===
Yopougon, Cocody, Plateau : 1500 FCFA
=== LIVRAISON ABIDJAN - ZONES PÉRIPHÉRIQUES ===
Port-Bouët, Bingerville : 2000 à 2500 FCFA
=== EXPÉDITION HORS ABIDJAN ===
Toutes les villes : 3500 à 5000 FCFA via transporteur`

func TestParseDeliverySections(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		zones []DeliveryZone
	}{
		{
			name:  "all three markers",
			text:  markedDeliveryText,
			zones: []DeliveryZone{ZoneCentre, ZonePeripherie, ZoneNational},
		},
		{
			name:  "centre only",
			text:  "=== LIVRAISON ABIDJAN - ZONES CENTRALES ===\n1500 FCFA partout",
			zones: []DeliveryZone{ZoneCentre},
		},
		{
			name:  "national only",
			text:  "=== EXPÉDITION HORS ABIDJAN ===\nExpédition par car",
			zones: []DeliveryZone{ZoneNational},
		},
		{
			name:  "case insensitive markers",
			text:  "=== livraison abidjan - zones centrales ===\n1500 FCFA",
			zones: []DeliveryZone{ZoneCentre},
		},
		{
			name:  "no markers",
			text:  "Livraison partout à Abidjan pour 1500 FCFA",
			zones: nil,
		},
		{
			name:  "empty",
			text:  "",
			zones: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := ParseDeliverySections(tt.text)
			zones := make([]DeliveryZone, 0, len(sections))
			for _, s := range sections {
				zones = append(zones, s.Zone)
				assert.NotEmpty(t, s.Body)
			}
			if tt.zones == nil {
				assert.Empty(t, zones)
			} else {
				assert.Equal(t, tt.zones, zones)
			}
		})
	}
}

func TestParseDeliverySections_BodyBounds(t *testing.T) {
	sections := ParseDeliverySections(markedDeliveryText)
	require.Len(t, sections, 3)

	// each body ends at the next marker
	assert.Equal(t, "Yopougon, Cocody, Plateau : 1500 FCFA", sections[0].Body)
	assert.Equal(t, "Port-Bouët, Bingerville : 2000 à 2500 FCFA", sections[1].Body)
	assert.Equal(t, "Toutes les villes : 3500 à 5000 FCFA via transporteur", sections[2].Body)
}

func TestBuildDelivery_ZoneDocuments(t *testing.T) {
	e := newTestEngine()

	record := fullRecord()
	record.Finalisation.Delivery = markedDeliveryText

	result, err := e.Derive(context.Background(), record)
	require.NoError(t, err)

	byFile := map[string]models.DerivedDocument{}
	for _, doc := range result.Documents {
		if doc.Type() == models.DocTypeLivraison {
			byFile[doc.FileName] = doc
		}
	}
	require.Len(t, byFile, 3)

	centre := byFile["livraison-zones-centrales.txt"]
	assert.Equal(t, "centre", centre.Metadata["delivery_zone"])
	assert.Equal(t, centreZoneNames, centre.Metadata["zone_names"])
	assert.Equal(t, 1500, centre.Metadata["price"])
	assert.Contains(t, centre.Content, "ZONES DE LIVRAISON - ABIDJAN CENTRE")
	assert.Contains(t, centre.Content, "Yopougon, Cocody, Plateau : 1500 FCFA")

	peripherie := byFile["livraison-zones-peripheriques.txt"]
	assert.Equal(t, "peripherie", peripherie.Metadata["delivery_zone"])
	assert.Equal(t, peripherieZoneNames, peripherie.Metadata["zone_names"])
	assert.Equal(t, 2000, peripherie.Metadata["price_min"])
	assert.Equal(t, 2500, peripherie.Metadata["price_max"])

	national := byFile["livraison-hors-abidjan.txt"]
	assert.Equal(t, "national", national.Metadata["delivery_zone"])
	assert.Equal(t, nationalZoneNames, national.Metadata["zone_names"])
	assert.Equal(t, 3500, national.Metadata["price_min"])
	assert.Equal(t, 5000, national.Metadata["price_max"])
}

func TestBuildDelivery_Fallback(t *testing.T) {
	e := newTestEngine()

	record := fullRecord()
	record.Finalisation.Delivery = "Livraison sous 48h partout en Côte d'Ivoire"

	result, err := e.Derive(context.Background(), record)
	require.NoError(t, err)

	var delivery []models.DerivedDocument
	for _, doc := range result.Documents {
		if doc.Type() == models.DocTypeLivraison {
			delivery = append(delivery, doc)
		}
	}
	require.Len(t, delivery, 1)

	doc := delivery[0]
	assert.Equal(t, "livraison-conditions.txt", doc.FileName)
	assert.Equal(t, "all", doc.Metadata["delivery_zone"])
	assert.Contains(t, doc.Content, "Livraison sous 48h partout en Côte d'Ivoire")
	assert.Contains(t, doc.Content, "CONDITIONS DE LIVRAISON")
}

func TestBuildDelivery_EmptyText(t *testing.T) {
	e := newTestEngine()

	record := fullRecord()
	record.Finalisation.Delivery = "   "

	result, err := e.Derive(context.Background(), record)
	require.NoError(t, err)

	for _, doc := range result.Documents {
		assert.NotEqual(t, models.DocTypeLivraison, doc.Type())
	}
}
