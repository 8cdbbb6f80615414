// Package engine derives the normalized, indexable document set for one
// onboarding record. All builders are pure functions of the record; the
// driver collects their output into a full-replace batch.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/ZETA-AI-ORG/onboard/pkg/models"
	"github.com/ZETA-AI-ORG/onboard/pkg/slug"
	"github.com/ZETA-AI-ORG/onboard/pkg/tracing"
)

// UnknownCompanyID partitions batches whose submission carried no company_id
const UnknownCompanyID = "UNKNOWN_COMPANY"

// Engine derives documents from onboarding records. Stateless and re-entrant:
// one instance serves any number of concurrent derivations.
type Engine struct {
	logger  ectologger.Logger
	country string
}

// NewEngine creates a derivation engine. country is stamped into location
// documents as the default operating country.
func NewEngine(logger ectologger.Logger, country string) *Engine {
	if country == "" {
		country = "Côte d'Ivoire"
	}
	return &Engine{
		logger:  logger,
		country: country,
	}
}

// Derive runs every section builder in fixed order and returns the complete
// document batch for the record. Missing optional fields skip their section;
// only a structurally absent record is an error. Deterministic: identical
// input yields an identical batch.
func (e *Engine) Derive(ctx context.Context, record *models.OnboardingRecord) (*models.DeriveResult, error) {
	ctx, span := tracing.StartSpan(ctx, "engine.Derive")
	defer span.End()

	if record == nil {
		return nil, fmt.Errorf("onboarding record is required")
	}

	companyID := record.CompanyID
	if companyID == "" {
		companyID = UnknownCompanyID
	}

	log := e.logger.WithContext(ctx).WithFields(map[string]any{"company_id": companyID})
	log.Debug("Deriving onboarding documents")

	var documents []models.DerivedDocument
	appendDoc := func(doc *models.DerivedDocument) {
		if doc != nil {
			documents = append(documents, *doc)
		}
	}

	appendDoc(e.buildCompany(record, companyID))
	appendDoc(e.buildCompanyInfo(record, companyID))
	appendDoc(e.buildLocalisation(record, companyID))
	documents = append(documents, e.buildProducts(record, companyID)...)
	documents = append(documents, e.buildDelivery(record, companyID)...)
	appendDoc(e.buildSupport(record, companyID))
	appendDoc(e.buildFAQ(record, companyID))

	log.WithFields(map[string]any{"document_count": len(documents)}).Info("Derived onboarding documents")

	return &models.DeriveResult{
		CompanyID:      companyID,
		Documents:      documents,
		PurgeBefore:    true,
		ProcessedCount: len(documents),
		OriginalInput: models.OriginalInput{
			CompanyName:   record.Identity.CompanyName,
			ProductsCount: len(record.Catalogue),
			Timestamp:     record.Timestamp,
		},
	}, nil
}

// newDocument stamps the canonical identifier set onto metadata and applies
// enrichment for every type except product.
func (e *Engine) newDocument(content, fileName string, metadata map[string]any, companyID string) *models.DerivedDocument {
	base := strings.TrimSuffix(fileName, ".txt")

	metadata["company_id"] = companyID
	metadata["id"] = slug.Underscore(base)
	metadata["document_id"] = metadata["id"]
	metadata["id_slug"] = slug.Dash(base)
	metadata["id_raw"] = fileName

	content = strings.TrimSpace(content)
	if docType, _ := metadata["type"].(string); docType != models.DocTypeProduct {
		content = Enrich(content, metadata)
	}

	return &models.DerivedDocument{
		Content:  content,
		FileName: fileName,
		Metadata: metadata,
	}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
