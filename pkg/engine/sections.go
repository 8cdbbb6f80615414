package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ZETA-AI-ORG/onboard/pkg/models"
	"github.com/ZETA-AI-ORG/onboard/pkg/slug"
)

// sectorRaw returns the first catalogue category, the best available proxy
// for the company's sector
func sectorRaw(record *models.OnboardingRecord) string {
	if len(record.Catalogue) > 0 {
		return record.Catalogue[0].Category
	}
	return ""
}

func sectorLabel(record *models.OnboardingRecord) string {
	raw := sectorRaw(record)
	if raw == "" {
		return "Commerce"
	}
	return strings.ReplaceAll(raw, "_", " ")
}

// buildCompany emits the company identity document. Requires a company name.
func (e *Engine) buildCompany(record *models.OnboardingRecord, companyID string) *models.DerivedDocument {
	identity := record.Identity
	if identity.CompanyName == "" {
		return nil
	}

	content := fmt.Sprintf(`IDENTITÉ ENTREPRISE:
Nom: %s
Assistant IA: %s
Zone d'activité: %s
Secteur: %s

DESCRIPTION:
%s

MISSION:
%s

OBJECTIF IA:
%s`,
		identity.CompanyName,
		orDefault(identity.IAName, "Assistant"),
		orDefault(identity.ActivityZone, "Non spécifié"),
		sectorLabel(record),
		identity.Description,
		identity.Mission,
		orDefault(identity.IAObjective, "Assister les clients"),
	)

	return e.newDocument(content, slug.Dash(identity.CompanyName)+"-identite.txt", map[string]any{
		"type":    models.DocTypeCompany,
		"name":    identity.CompanyName,
		"ai_name": identity.IAName,
		"zone":    identity.ActivityZone,
		"sector":  orDefault(sectorRaw(record), "commerce"),
	}, companyID)
}

// buildCompanyInfo emits the extended company description document. Requires
// a company name plus a description or mission.
func (e *Engine) buildCompanyInfo(record *models.OnboardingRecord, companyID string) *models.DerivedDocument {
	identity := record.Identity
	if identity.CompanyName == "" || (identity.Description == "" && identity.Mission == "") {
		return nil
	}

	businessType := "E-commerce 100% en ligne"
	if record.Finalisation.Contact != nil && record.Finalisation.Contact.HasPhysicalStore {
		businessType = "Commerce physique + en ligne"
	}

	content := fmt.Sprintf(`INFORMATIONS SUR L'ENTREPRISE:

🏢 NOM: %s
🤖 ASSISTANT IA: %s
🌍 ZONE D'ACTIVITÉ: %s
📊 SECTEUR: %s

📝 DESCRIPTION:
%s

🎯 MISSION:
%s

🤖 OBJECTIF ASSISTANT IA:
%s

💼 TYPE D'ENTREPRISE:
%s`,
		identity.CompanyName,
		orDefault(identity.IAName, "Assistant"),
		orDefault(identity.ActivityZone, e.country),
		sectorLabel(record),
		orDefault(identity.Description, "Non spécifié"),
		orDefault(identity.Mission, "Non spécifié"),
		orDefault(identity.IAObjective, "Assister et guider les clients"),
		businessType,
	)

	return e.newDocument(content, slug.Dash(identity.CompanyName)+"-infos-entreprise.txt", map[string]any{
		"type":            models.DocTypeCompanyInfo,
		"name":            identity.CompanyName,
		"ai_name":         identity.IAName,
		"zone":            identity.ActivityZone,
		"sector":          orDefault(sectorRaw(record), "commerce"),
		"has_description": identity.Description != "",
		"has_mission":     identity.Mission != "",
	}, companyID)
}

// buildLocalisation emits the location/storefront document. The online-only
// wording is deliberately emphatic: the assistant must never invent a
// physical address for a virtual shop.
func (e *Engine) buildLocalisation(record *models.OnboardingRecord, companyID string) *models.DerivedDocument {
	identity := record.Identity
	contact := record.Finalisation.Contact
	if identity.CompanyName == "" || contact == nil {
		return nil
	}

	hasStore := contact.HasPhysicalStore

	var b strings.Builder
	b.WriteString("LOCALISATION ET ADRESSE ENTREPRISE:\n\n")
	b.WriteString("🏢 NOM: " + identity.CompanyName + "\n")
	if hasStore {
		b.WriteString("📍 TYPE: Boutique physique + en ligne\n\n")
		b.WriteString("✅ BOUTIQUE PHYSIQUE DISPONIBLE\n")
	} else {
		b.WriteString("📍 TYPE: E-commerce 100% en ligne (boutique virtuelle)\n\n")
		b.WriteString("❌ BOUTIQUE PHYSIQUE: Aucune\n")
		b.WriteString("❌ MAGASIN PHYSIQUE: Non disponible\n")
		b.WriteString("❌ POINT DE VENTE: Pas de local commercial\n")
		b.WriteString("❌ ADRESSE PHYSIQUE: N/A - Uniquement en ligne\n\n")
		b.WriteString("Vous ne pouvez PAS vous rendre dans nos locaux car nous n'avons pas de boutique physique.\n")
		b.WriteString("Nous sommes une entreprise exclusivement en ligne.\n")
	}
	b.WriteString("\n📞 CONTACT:\n")
	b.WriteString(orDefault(contact.Phone, "Non spécifié") + "\n")
	b.WriteString("Horaires: " + orDefault(contact.Hours, "24/7 (toujours disponible)") + "\n\n")
	b.WriteString("🌍 ZONE D'ACTIVITÉ: " + orDefault(identity.ActivityZone, e.country) + "\n")
	if hasStore {
		b.WriteString("🚚 MODÈLE: Boutique physique + Livraison à domicile")
	} else {
		b.WriteString("🚚 MODÈLE: Livraison à domicile uniquement")
	}

	locationType := "online_only"
	if hasStore {
		locationType = "hybrid"
	}

	return e.newDocument(b.String(), slug.Dash(identity.CompanyName)+"-localisation.txt", map[string]any{
		"type":               models.DocTypeLocalisation,
		"name":               identity.CompanyName,
		"zone":               identity.ActivityZone,
		"country":            e.country,
		"has_physical_store": hasStore,
		"location_type":      locationType,
		"phone":              contact.Phone,
	}, companyID)
}

// buildProducts emits one structured document per named catalogue entry.
// Product content is line-oriented for downstream parsing and is never
// enriched. Nameless products are dropped without affecting the rest.
func (e *Engine) buildProducts(record *models.OnboardingRecord, companyID string) []models.DerivedDocument {
	var documents []models.DerivedDocument

	for _, product := range record.Catalogue {
		if product.Name == "" {
			continue
		}

		variantIDs := make([]string, len(product.Variants))
		for i, variant := range product.Variants {
			variantIDs[i] = variant.ID
			if variantIDs[i] == "" {
				variantIDs[i] = slug.VariantID(product.Name, variant.Name, variant.Price)
			}
		}

		blocks := make([]string, len(product.Variants))
		for i, variant := range product.Variants {
			blocks[i] = fmt.Sprintf("ID: %s\nProduit: %s\nVariante: %s\nPrix: %d FCFA\nQuantité: %s\nUnité: %s\nDescription: %s",
				variantIDs[i],
				product.Name,
				variant.Name,
				variant.Price,
				strconv.FormatFloat(variant.Quantity, 'f', -1, 64),
				orDefault(variant.Unit, "unités"),
				variant.Description,
			)
		}

		mainID := slug.Dash(product.Name)
		if len(variantIDs) > 0 {
			mainID = slug.Dash(variantIDs[0])
		}

		priceMin, priceMax := priceBounds(product.Variants)

		metadata := map[string]any{
			"type":           models.DocTypeProduct,
			"product_name":   product.Name,
			"category":       product.Category,
			"subcategory":    product.Subcategory,
			"variants_count": len(product.Variants),
			"price_min":      priceMin,
			"price_max":      priceMax,
		}
		if product.Usage != "" {
			metadata["usage"] = product.Usage
		}
		if product.Notes != "" {
			metadata["notes"] = product.Notes
		}

		doc := e.newDocument(strings.Join(blocks, "\n\n"), mainID+".txt", metadata, companyID)
		documents = append(documents, *doc)
	}

	return documents
}

// priceBounds returns min/max over the variant prices, 0/0 when the product
// has no variants
func priceBounds(variants []models.Variant) (int, int) {
	if len(variants) == 0 {
		return 0, 0
	}
	minPrice, maxPrice := variants[0].Price, variants[0].Price
	for _, v := range variants[1:] {
		if v.Price < minPrice {
			minPrice = v.Price
		}
		if v.Price > maxPrice {
			maxPrice = v.Price
		}
	}
	return minPrice, maxPrice
}

// buildDelivery emits up to three zone documents from the parsed delivery
// sections, or a single verbatim fallback document when no marker is found.
func (e *Engine) buildDelivery(record *models.OnboardingRecord, companyID string) []models.DerivedDocument {
	deliveryText := record.Finalisation.Delivery
	if strings.TrimSpace(deliveryText) == "" {
		return nil
	}

	sections := ParseDeliverySections(deliveryText)
	if len(sections) == 0 {
		content := fmt.Sprintf(`CONDITIONS DE LIVRAISON:

%s

🚚 SERVICE: Livraison à domicile
📍 COUVERTURE: %s`, deliveryText, e.country)

		doc := e.newDocument(content, "livraison-conditions.txt", map[string]any{
			"type":          models.DocTypeLivraison,
			"delivery_zone": string(ZoneAll),
		}, companyID)
		return []models.DerivedDocument{*doc}
	}

	var documents []models.DerivedDocument
	for _, section := range sections {
		doc := e.buildDeliveryZone(section, companyID)
		if doc != nil {
			documents = append(documents, *doc)
		}
	}
	return documents
}

func (e *Engine) buildDeliveryZone(section DeliverySection, companyID string) *models.DerivedDocument {
	switch section.Zone {
	case ZoneCentre:
		content := fmt.Sprintf(`ZONES DE LIVRAISON - ABIDJAN CENTRE

%s

🚚 SERVICE: Livraison à domicile uniquement
📍 COUVERTURE: Zones centrales d'Abidjan
⏰ DÉLAI: Commande avant 11h → Livraison jour même | Après 11h → Lendemain`, section.Body)

		return e.newDocument(content, "livraison-zones-centrales.txt", map[string]any{
			"type":          models.DocTypeLivraison,
			"delivery_zone": string(ZoneCentre),
			"zone_names":    centreZoneNames,
			"price":         1500,
		}, companyID)

	case ZonePeripherie:
		content := fmt.Sprintf(`ZONES DE LIVRAISON - ABIDJAN PÉRIPHÉRIE

%s

🚚 SERVICE: Livraison à domicile uniquement
📍 COUVERTURE: Zones périphériques d'Abidjan
⏰ DÉLAI: Commande avant 11h → Livraison jour même | Après 11h → Lendemain`, section.Body)

		return e.newDocument(content, "livraison-zones-peripheriques.txt", map[string]any{
			"type":          models.DocTypeLivraison,
			"delivery_zone": string(ZonePeripherie),
			"zone_names":    peripherieZoneNames,
			"price_min":     2000,
			"price_max":     2500,
		}, companyID)

	case ZoneNational:
		content := fmt.Sprintf(`ZONES DE LIVRAISON - HORS ABIDJAN (NATIONAL)

%s

🚚 SERVICE: Livraison à domicile dans toute la Côte d'Ivoire
📍 COUVERTURE: Toutes les villes hors Abidjan
⏰ DÉLAI: Variable selon la ville (confirmation par téléphone)`, section.Body)

		return e.newDocument(content, "livraison-hors-abidjan.txt", map[string]any{
			"type":          models.DocTypeLivraison,
			"delivery_zone": string(ZoneNational),
			"zone_names":    nationalZoneNames,
			"price_min":     3500,
			"price_max":     5000,
		}, companyID)
	}

	return nil
}

// buildSupport emits the payment and support document when either payment or
// contact data is present.
func (e *Engine) buildSupport(record *models.OnboardingRecord, companyID string) *models.DerivedDocument {
	payment := record.Finalisation.Payment
	contact := record.Finalisation.Contact
	if payment == nil && contact == nil {
		return nil
	}

	var b strings.Builder

	if payment != nil {
		b.WriteString("MODES DE PAIEMENT ACCEPTÉS:\n")
		if len(payment.Methods) > 0 {
			b.WriteString(strings.Join(payment.Methods, ", "))
		} else {
			b.WriteString("Non spécifié")
		}
		b.WriteString("\n\nNUMÉROS DE PAIEMENT:\n")

		// map iteration order is random; sort for deterministic output
		methods := make([]string, 0, len(payment.Numbers))
		for method := range payment.Numbers {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		for _, method := range methods {
			b.WriteString(strings.ToUpper(method) + ": " + payment.Numbers[method] + "\n")
		}

		if payment.AcompteRequired {
			b.WriteString("\n⚠️ ACOMPTE OBLIGATOIRE pour valider la commande")
		}
		if payment.PrepaidOnly {
			b.WriteString("\n⚠️ PAIEMENT INTÉGRAL AVANT LIVRAISON")
		}
	}

	if contact != nil {
		b.WriteString("\n\nCONTACT & SUPPORT:\n\n")
		b.WriteString("📞 Téléphone/WhatsApp: " + orDefault(contact.Phone, "Non spécifié") + "\n")
		b.WriteString("⏰ Horaires: " + orDefault(contact.Hours, "Non spécifié") + "\n\n")
		b.WriteString("POLITIQUE DE RETOUR:\n")
		b.WriteString(orDefault(contact.ReturnPolicy, "Non spécifié"))
	}

	metadata := map[string]any{
		"type":             models.DocTypeSupport,
		"payment_methods":  []string{},
		"acompte_required": false,
	}
	if contact != nil {
		metadata["phone"] = contact.Phone
	}
	if payment != nil {
		if payment.Methods != nil {
			metadata["payment_methods"] = payment.Methods
		}
		metadata["acompte_required"] = payment.AcompteRequired
	}

	return e.newDocument(strings.TrimSpace(b.String()), "paiement-support.txt", metadata, companyID)
}

// buildFAQ emits the question/answer document when the FAQ is non-empty
func (e *Engine) buildFAQ(record *models.OnboardingRecord, companyID string) *models.DerivedDocument {
	faq := record.Finalisation.FAQ
	if len(faq) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("QUESTIONS FRÉQUENTES (FAQ):\n\n")
	for i, entry := range faq {
		fmt.Fprintf(&b, "Q%d: %s\nR: %s\n\n", i+1, entry.Question, entry.Answer)
	}

	return e.newDocument(strings.TrimSpace(b.String()), "faq.txt", map[string]any{
		"type":            models.DocTypeFAQ,
		"questions_count": len(faq),
	}, companyID)
}
