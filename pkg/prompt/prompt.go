// Package prompt fills the universal assistant prompt template from an
// onboarding record, producing the per-company RAG configuration row.
package prompt

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/ZETA-AI-ORG/onboard/pkg/models"
	"github.com/ZETA-AI-ORG/onboard/pkg/tracing"
)

//go:embed template.txt
var universalTemplate string

// Fallbacks used when the onboarding form left a field blank
const (
	defaultAssistantName = "Jessica"
	defaultCompanyName   = "ENTREPRISE"
	defaultSector        = "Commerce"
	defaultLocation      = "Abidjan, CI"
	defaultWhatsApp      = "+225 0160924560"
	defaultWave          = "+225 0787360757"
	defaultDeposit       = 2000
)

var (
	phoneRe       = regexp.MustCompile(`\+?\d[\d\s]+`)
	leadingDashRe = regexp.MustCompile(`^-\s*`)
)

// Filler renders the universal system prompt for a company
type Filler struct {
	logger ectologger.Logger
}

func NewFiller(logger ectologger.Logger) *Filler {
	return &Filler{logger: logger}
}

// Fill produces the RAG configuration for the record's company. It never
// fails: missing fields fall back to defaults so a partially filled form
// still yields a usable prompt.
func (f *Filler) Fill(ctx context.Context, record *models.OnboardingRecord) *models.RagConfig {
	ctx, span := tracing.StartSpan(ctx, "prompt.Filler.Fill")
	defer span.End()

	identity := record.Identity
	payment := record.Finalisation.Payment
	contact := record.Finalisation.Contact

	priceMin, priceMax := catalogPriceRange(record.Catalogue)

	deposit := defaultDeposit
	if payment != nil && payment.DepositAmount > 0 {
		deposit = payment.DepositAmount
	}

	replacements := map[string]string{
		"{{ASSISTANT_NAME}}":       orDefault(identity.IAName, defaultAssistantName),
		"{{COMPANY_NAME}}":         orDefault(identity.CompanyName, defaultCompanyName),
		"{{COMPANY_SECTOR}}":       sector(record),
		"{{COMPANY_LOCATION}}":     defaultLocation,
		"{{WHATSAPP_PHONE}}":       whatsappPhone(contact),
		"{{WAVE_PHONE}}":           wavePhone(payment),
		"{{DEPOSIT_AMOUNT}}":       FormatNumber(deposit),
		"{{PRODUCTS_LIST}}":        productsList(record.Catalogue),
		"{{PRICE_MIN}}":            FormatNumber(priceMin),
		"{{PRICE_MAX}}":            FormatNumber(priceMax),
		"{{PRODUCT_CATEGORY}}":     strings.ToLower(sector(record)),
		"{{DELIVERY_ZONES_LIST}}":  deliveryZonesList(record.Finalisation.Delivery),
		"{{PAYMENT_METHODS_LIST}}": paymentMethodsList(payment, deposit),
		"{{PAYMENT_METHOD}}":       firstPaymentMethod(payment),
	}

	filled := universalTemplate
	for placeholder, value := range replacements {
		filled = strings.ReplaceAll(filled, placeholder, value)
	}

	f.logger.WithContext(ctx).WithFields(map[string]any{
		"company_id":    record.CompanyID,
		"prompt_length": len(filled),
	}).Debug("Filled system prompt template")

	return &models.RagConfig{
		CompanyID:            record.CompanyID,
		SystemPromptTemplate: filled,
		RagEnabled:           true,
		UpdatedAt:            time.Now().UTC(),
	}
}

func sector(record *models.OnboardingRecord) string {
	if len(record.Catalogue) > 0 && record.Catalogue[0].Category != "" {
		return strings.ReplaceAll(record.Catalogue[0].Category, "_", " ")
	}
	return defaultSector
}

func whatsappPhone(contact *models.Contact) string {
	if contact == nil || contact.Phone == "" {
		return defaultWhatsApp
	}
	if match := phoneRe.FindString(contact.Phone); match != "" {
		return strings.TrimSpace(match)
	}
	return defaultWhatsApp
}

func wavePhone(payment *models.Payment) string {
	if payment != nil {
		if number, ok := payment.Numbers["Wave"]; ok && number != "" {
			return number
		}
	}
	return defaultWave
}

func firstPaymentMethod(payment *models.Payment) string {
	if payment != nil && len(payment.Methods) > 0 {
		return payment.Methods[0]
	}
	return "Wave"
}

// productsList renders one bullet per product carrying variants, with the
// product's own price range
func productsList(catalogue []models.Product) string {
	var lines []string
	for _, product := range catalogue {
		if len(product.Variants) == 0 {
			continue
		}
		minPrice, maxPrice := product.Variants[0].Price, product.Variants[0].Price
		for _, v := range product.Variants[1:] {
			if v.Price < minPrice {
				minPrice = v.Price
			}
			if v.Price > maxPrice {
				maxPrice = v.Price
			}
		}
		lines = append(lines, fmt.Sprintf("- %s (%s - %s FCFA)", product.Name, FormatNumber(minPrice), FormatNumber(maxPrice)))
	}
	if len(lines) == 0 {
		return "- Aucun produit configuré"
	}
	return strings.Join(lines, "\n")
}

func catalogPriceRange(catalogue []models.Product) (int, int) {
	var found bool
	var minPrice, maxPrice int
	for _, product := range catalogue {
		for _, v := range product.Variants {
			if !found {
				minPrice, maxPrice = v.Price, v.Price
				found = true
				continue
			}
			if v.Price < minPrice {
				minPrice = v.Price
			}
			if v.Price > maxPrice {
				maxPrice = v.Price
			}
		}
	}
	return minPrice, maxPrice
}

// deliveryZonesList keeps delivery lines mentioning a tariff, stripped of
// leading bullets, and drops header lines
func deliveryZonesList(deliveryText string) string {
	var zones []string
	for _, line := range strings.Split(deliveryText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.Contains(trimmed, "FCFA") || strings.Contains(trimmed, "Délais") || strings.Contains(trimmed, "Tarif :") {
			continue
		}
		zones = append(zones, "- "+leadingDashRe.ReplaceAllString(trimmed, ""))
	}
	if len(zones) == 0 {
		return "- Aucune zone configurée"
	}
	return strings.Join(zones, "\n")
}

func paymentMethodsList(payment *models.Payment, deposit int) string {
	if payment == nil || len(payment.Methods) == 0 {
		return "- Aucun moyen de paiement configuré"
	}
	lines := make([]string, len(payment.Methods))
	for i, method := range payment.Methods {
		lines[i] = fmt.Sprintf("- %s (Acompte: %s FCFA)", method, FormatNumber(deposit))
	}
	return strings.Join(lines, "\n")
}

// FormatNumber renders an amount with French-style thousands separators,
// "22900" becoming "22 900"
func FormatNumber(n int) string {
	digits := fmt.Sprintf("%d", n)
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(digits[i : i+3])
	}

	out := b.String()
	if negative {
		out = "-" + out
	}
	return out
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
