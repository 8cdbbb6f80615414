package engine

import (
	"strconv"
	"strings"
)

// Enrich appends a fixed, ordered allow-list of metadata values to the content
// as space-joined search tokens. Product documents are never enriched: their
// content stays structured for downstream parsing. The metadata map itself is
// not mutated.
func Enrich(content string, metadata map[string]any) string {
	var values []string

	push := func(v string) {
		if v != "" {
			values = append(values, v)
		}
	}
	pushString := func(key string) {
		if s, ok := metadata[key].(string); ok {
			push(s)
		}
	}

	// Identity
	pushString("name")
	pushString("ai_name")
	pushString("sector")
	pushString("zone")
	pushString("country")

	// Delivery
	pushString("delivery_zone")
	if names, ok := metadata["zone_names"].([]string); ok {
		values = append(values, names...)
	}
	if price, ok := intValue(metadata["price"]); ok && price > 0 {
		push(strconv.Itoa(price) + " FCFA")
	}
	priceMin, hasMin := intValue(metadata["price_min"])
	priceMax, hasMax := intValue(metadata["price_max"])
	if hasMin && hasMax && priceMin > 0 && priceMax > 0 {
		push(strconv.Itoa(priceMin) + " FCFA")
		push(strconv.Itoa(priceMax) + " FCFA")
	}

	// Contact & support
	pushString("phone")
	if lt, ok := metadata["location_type"].(string); ok {
		push(strings.ReplaceAll(lt, "_", " "))
	}
	if hasStore, ok := metadata["has_physical_store"].(bool); ok {
		if hasStore {
			push("boutique physique")
		} else {
			push("en ligne uniquement")
		}
	}

	// Payment
	if methods, ok := metadata["payment_methods"].([]string); ok {
		values = append(values, methods...)
	}
	if required, ok := metadata["acompte_required"].(bool); ok && required {
		push("acompte obligatoire")
	}

	// FAQ
	if count, ok := intValue(metadata["questions_count"]); ok && count > 0 {
		push(strconv.Itoa(count) + " questions")
	}

	if len(values) == 0 {
		return content
	}
	return content + " " + strings.Join(values, " ")
}

// intValue coerces the numeric shapes a metadata value can take after a
// JSON round trip
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
