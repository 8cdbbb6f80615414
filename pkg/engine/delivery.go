package engine

import (
	"regexp"
	"strings"
)

// DeliveryZone identifies one recognized delivery area in the finalisation
// free-text blob
type DeliveryZone string

const (
	ZoneCentre     DeliveryZone = "centre"
	ZonePeripherie DeliveryZone = "peripherie"
	ZoneNational   DeliveryZone = "national"
	// ZoneAll marks the fallback document carrying the unparsed blob
	ZoneAll DeliveryZone = "all"
)

// DeliverySection is one tagged slice of the delivery blob: the zone it
// describes and the body text between its marker and the next one.
type DeliverySection struct {
	Zone DeliveryZone
	Body string
}

var (
	centreMarker     = regexp.MustCompile(`(?is)===\s*LIVRAISON ABIDJAN - ZONES CENTRALES\s*===(.*?)(?:===|\z)`)
	peripherieMarker = regexp.MustCompile(`(?is)===\s*LIVRAISON ABIDJAN - ZONES PÉRIPHÉRIQUES\s*===(.*?)(?:===|\z)`)
	nationalMarker   = regexp.MustCompile(`(?is)===\s*EXPÉDITION HORS ABIDJAN\s*===(.*)`)
)

// Fixed zone rosters and tariffs per recognized section. These mirror the
// onboarding product's delivery grid and are part of the document contract.
var (
	centreZoneNames     = []string{"Yopougon", "Cocody", "Plateau", "Adjamé", "Abobo", "Marcory", "Koumassi", "Treichville", "Angré", "Riviera"}
	peripherieZoneNames = []string{"Port-Bouët", "Attécoubé", "Bingerville", "Songon", "Anyama", "Brofodoumé", "Grand-Bassam", "Dabou"}
	nationalZoneNames   = []string{"Hors Abidjan", "Autres villes", "Provinces"}
)

// ParseDeliverySections scans the delivery free text for the three recognized
// section markers and returns the tagged sections in fixed order. An empty
// result means no marker was found; callers fall back to a single verbatim
// document so delivery information is never dropped.
func ParseDeliverySections(text string) []DeliverySection {
	var sections []DeliverySection

	if m := centreMarker.FindStringSubmatch(text); m != nil {
		sections = append(sections, DeliverySection{Zone: ZoneCentre, Body: strings.TrimSpace(m[1])})
	}
	if m := peripherieMarker.FindStringSubmatch(text); m != nil {
		sections = append(sections, DeliverySection{Zone: ZonePeripherie, Body: strings.TrimSpace(m[1])})
	}
	if m := nationalMarker.FindStringSubmatch(text); m != nil {
		sections = append(sections, DeliverySection{Zone: ZoneNational, Body: strings.TrimSpace(m[1])})
	}

	return sections
}
