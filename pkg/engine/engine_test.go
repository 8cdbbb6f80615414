package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZETA-AI-ORG/onboard/pkg/models"
)

func newTestEngine() *Engine {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewEngine(logger, "")
}

func fullRecord() *models.OnboardingRecord {
	return &models.OnboardingRecord{
		CompanyID: "acme-123",
		Identity: models.Identity{
			CompanyName:  "Acme Shop",
			IAName:       "Jessica",
			ActivityZone: "Abidjan",
			Description:  "Boutique de gadgets",
			Mission:      "Équiper tout le monde",
			IAObjective:  "Vendre efficacement",
		},
		Catalogue: []models.Product{
			{
				Name:     "Widget",
				Category: "electronique",
				Variants: []models.Variant{
					{Name: "Simple", Price: 1000, Quantity: 1, Unit: "pièce"},
					{Name: "Lot de 3", Price: 2500, Quantity: 3, Unit: "pièces"},
				},
			},
		},
		Finalisation: models.Finalisation{
			Delivery: "Livraison partout à Abidjan, 1500 FCFA",
			Payment: &models.Payment{
				Methods:         []string{"Wave", "Orange Money"},
				Numbers:         map[string]string{"Wave": "+225 07 00 00 00", "Orange Money": "+225 05 00 00 00"},
				AcompteRequired: true,
			},
			Contact: &models.Contact{
				Phone:            "+225 01 02 03 04",
				Hours:            "8h-20h",
				HasPhysicalStore: false,
				ReturnPolicy:     "Retour sous 7 jours",
			},
			FAQ: []models.FAQEntry{
				{Question: "Livrez-vous le dimanche ?", Answer: "Oui, sur Abidjan."},
			},
		},
	}
}

func TestDerive_FullRecord(t *testing.T) {
	e := newTestEngine()

	result, err := e.Derive(context.Background(), fullRecord())
	require.NoError(t, err)

	assert.Equal(t, "acme-123", result.CompanyID)
	assert.True(t, result.PurgeBefore)
	assert.Equal(t, len(result.Documents), result.ProcessedCount)
	assert.Equal(t, "Acme Shop", result.OriginalInput.CompanyName)
	assert.Equal(t, 1, result.OriginalInput.ProductsCount)

	types := make([]string, len(result.Documents))
	for i, doc := range result.Documents {
		types[i] = doc.Type()
	}
	// fixed build order: identity, infos, localisation, products, delivery
	// (fallback), support, faq
	assert.Equal(t, []string{
		models.DocTypeCompany,
		models.DocTypeCompanyInfo,
		models.DocTypeLocalisation,
		models.DocTypeProduct,
		models.DocTypeLivraison,
		models.DocTypeSupport,
		models.DocTypeFAQ,
	}, types)
}

func TestDerive_MetadataStamping(t *testing.T) {
	e := newTestEngine()

	result, err := e.Derive(context.Background(), fullRecord())
	require.NoError(t, err)

	for _, doc := range result.Documents {
		assert.Equal(t, "acme-123", doc.Metadata["company_id"], "document %s", doc.FileName)
		assert.NotEmpty(t, doc.Metadata["id"], "document %s", doc.FileName)
		assert.Equal(t, doc.Metadata["id"], doc.Metadata["document_id"], "document %s", doc.FileName)
		assert.NotEmpty(t, doc.Metadata["id_slug"], "document %s", doc.FileName)
		assert.Equal(t, doc.FileName, doc.Metadata["id_raw"], "document %s", doc.FileName)
		assert.NotEmpty(t, doc.Metadata["type"], "document %s", doc.FileName)
	}
}

func TestDerive_Deterministic(t *testing.T) {
	e := newTestEngine()

	first, err := e.Derive(context.Background(), fullRecord())
	require.NoError(t, err)
	second, err := e.Derive(context.Background(), fullRecord())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDerive_NilRecord(t *testing.T) {
	e := newTestEngine()

	_, err := e.Derive(context.Background(), nil)
	assert.Error(t, err)
}

func TestDerive_MissingCompanyID(t *testing.T) {
	e := newTestEngine()

	record := fullRecord()
	record.CompanyID = ""
	result, err := e.Derive(context.Background(), record)
	require.NoError(t, err)

	assert.Equal(t, UnknownCompanyID, result.CompanyID)
	assert.True(t, result.PurgeBefore)
	for _, doc := range result.Documents {
		assert.Equal(t, UnknownCompanyID, doc.Metadata["company_id"])
	}
}

func TestDerive_EmptyRecord(t *testing.T) {
	e := newTestEngine()

	result, err := e.Derive(context.Background(), &models.OnboardingRecord{CompanyID: "empty-co"})
	require.NoError(t, err)

	assert.Empty(t, result.Documents)
	assert.Zero(t, result.ProcessedCount)
	assert.True(t, result.PurgeBefore, "an empty batch still purges the previous set")
}

func TestDerive_NamelessProductSkipped(t *testing.T) {
	e := newTestEngine()

	record := fullRecord()
	record.Catalogue = append(record.Catalogue, models.Product{
		Category: "divers",
		Variants: []models.Variant{{Name: "Orphan", Price: 999}},
	})

	result, err := e.Derive(context.Background(), record)
	require.NoError(t, err)

	productCount := 0
	for _, doc := range result.Documents {
		if doc.Type() == models.DocTypeProduct {
			productCount++
		}
	}
	assert.Equal(t, 1, productCount, "product without a name must be dropped")
	assert.Equal(t, 2, result.OriginalInput.ProductsCount, "original input still reports the raw count")
}

func TestDerive_ProductContentStructured(t *testing.T) {
	e := newTestEngine()

	result, err := e.Derive(context.Background(), fullRecord())
	require.NoError(t, err)

	var product *models.DerivedDocument
	for i := range result.Documents {
		if result.Documents[i].Type() == models.DocTypeProduct {
			product = &result.Documents[i]
			break
		}
	}
	require.NotNil(t, product)

	blocks := strings.Split(product.Content, "\n\n")
	require.Len(t, blocks, 2)
	assert.Contains(t, blocks[0], "ID: widget simple 1000 fcfa")
	assert.Contains(t, blocks[0], "Produit: Widget")
	assert.Contains(t, blocks[0], "Prix: 1000 FCFA")
	assert.Contains(t, blocks[1], "Variante: Lot de 3")
	assert.Contains(t, blocks[1], "Quantité: 3")

	assert.Equal(t, 1000, product.Metadata["price_min"])
	assert.Equal(t, 2500, product.Metadata["price_max"])
	assert.Equal(t, 2, product.Metadata["variants_count"])
	assert.Equal(t, "widget-simple-1000-fcfa.txt", product.FileName)
}

func TestDerive_VariantIDPreserved(t *testing.T) {
	e := newTestEngine()

	record := fullRecord()
	record.Catalogue[0].Variants[0].ID = "custom-id-1"

	result, err := e.Derive(context.Background(), record)
	require.NoError(t, err)

	var product *models.DerivedDocument
	for i := range result.Documents {
		if result.Documents[i].Type() == models.DocTypeProduct {
			product = &result.Documents[i]
			break
		}
	}
	require.NotNil(t, product)
	assert.Contains(t, product.Content, "ID: custom-id-1")
	assert.Equal(t, "custom-id-1.txt", product.FileName)
}

func TestDerive_MinimalSubmission(t *testing.T) {
	e := newTestEngine()

	record := &models.OnboardingRecord{
		CompanyID: "acme",
		Identity:  models.Identity{CompanyName: "Acme Shop"},
		Catalogue: []models.Product{
			{
				Name:     "Widget",
				Variants: []models.Variant{{Name: "Small", Price: 1000, Quantity: 10, Unit: "unités"}},
			},
		},
		Finalisation: models.Finalisation{
			FAQ: []models.FAQEntry{{Question: "Q1?", Answer: "A1"}},
		},
	}

	result, err := e.Derive(context.Background(), record)
	require.NoError(t, err)

	byType := map[string]models.DerivedDocument{}
	for _, doc := range result.Documents {
		byType[doc.Type()] = doc
	}

	require.Contains(t, byType, models.DocTypeCompany)
	require.Contains(t, byType, models.DocTypeProduct)
	require.Contains(t, byType, models.DocTypeFAQ)

	product := byType[models.DocTypeProduct]
	assert.Equal(t, "Widget", product.Metadata["product_name"])
	assert.Equal(t, 1000, product.Metadata["price_min"])
	assert.Equal(t, 1000, product.Metadata["price_max"])

	assert.Equal(t, 1, byType[models.DocTypeFAQ].Metadata["questions_count"])
	assert.Equal(t, len(result.Documents), result.ProcessedCount)
}

func TestDerive_PriceBoundsAcrossVariants(t *testing.T) {
	e := newTestEngine()

	record := fullRecord()
	record.Catalogue[0].Variants = []models.Variant{
		{Name: "A", Price: 500},
		{Name: "B", Price: 3000},
		{Name: "C", Price: 1200},
	}

	result, err := e.Derive(context.Background(), record)
	require.NoError(t, err)

	for _, doc := range result.Documents {
		if doc.Type() == models.DocTypeProduct {
			assert.Equal(t, 500, doc.Metadata["price_min"])
			assert.Equal(t, 3000, doc.Metadata["price_max"])
			return
		}
	}
	t.Fatal("no product document emitted")
}

func TestDerive_LocalisationOnlineOnly(t *testing.T) {
	e := newTestEngine()

	result, err := e.Derive(context.Background(), fullRecord())
	require.NoError(t, err)

	var localisation *models.DerivedDocument
	for i := range result.Documents {
		if result.Documents[i].Type() == models.DocTypeLocalisation {
			localisation = &result.Documents[i]
			break
		}
	}
	require.NotNil(t, localisation)

	assert.Contains(t, localisation.Content, "E-commerce 100% en ligne")
	assert.Contains(t, localisation.Content, "nous n'avons pas de boutique physique")
	assert.Equal(t, "online_only", localisation.Metadata["location_type"])
	assert.Equal(t, false, localisation.Metadata["has_physical_store"])
}

func TestDerive_SupportNumbersSorted(t *testing.T) {
	e := newTestEngine()

	result, err := e.Derive(context.Background(), fullRecord())
	require.NoError(t, err)

	var support *models.DerivedDocument
	for i := range result.Documents {
		if result.Documents[i].Type() == models.DocTypeSupport {
			support = &result.Documents[i]
			break
		}
	}
	require.NotNil(t, support)

	// map order must not leak into content: keys render sorted
	orangeIdx := strings.Index(support.Content, "ORANGE MONEY:")
	waveIdx := strings.Index(support.Content, "WAVE:")
	require.GreaterOrEqual(t, orangeIdx, 0)
	require.GreaterOrEqual(t, waveIdx, 0)
	assert.Less(t, orangeIdx, waveIdx)

	assert.Contains(t, support.Content, "ACOMPTE OBLIGATOIRE")
	assert.Contains(t, support.Content, "Retour sous 7 jours")
	assert.Equal(t, "paiement-support.txt", support.FileName)
}

func TestDerive_FAQNumbering(t *testing.T) {
	e := newTestEngine()

	record := fullRecord()
	record.Finalisation.FAQ = append(record.Finalisation.FAQ, models.FAQEntry{
		Question: "Acceptez-vous les retours ?",
		Answer:   "Sous 7 jours.",
	})

	result, err := e.Derive(context.Background(), record)
	require.NoError(t, err)

	var faq *models.DerivedDocument
	for i := range result.Documents {
		if result.Documents[i].Type() == models.DocTypeFAQ {
			faq = &result.Documents[i]
			break
		}
	}
	require.NotNil(t, faq)

	assert.Contains(t, faq.Content, "Q1: Livrez-vous le dimanche ?")
	assert.Contains(t, faq.Content, "Q2: Acceptez-vous les retours ?")
	assert.Equal(t, 2, faq.Metadata["questions_count"])
	assert.Equal(t, "faq.txt", faq.FileName)
	// enrichment appends the question count token
	assert.Contains(t, faq.Content, "2 questions")
}
