package models

import (
	"encoding/json"
	"time"
)

// Document types emitted by the derivation engine, in pipeline order
const (
	DocTypeCompany      = "company"
	DocTypeCompanyInfo  = "company_info"
	DocTypeLocalisation = "localisation"
	DocTypeProduct      = "product"
	DocTypeLivraison    = "livraison"
	DocTypeSupport      = "support"
	DocTypeFAQ          = "faq"
)

// DerivedDocument is one unit of normalized, indexable text plus metadata.
// Metadata always carries company_id, id, document_id, id_slug, id_raw and type.
type DerivedDocument struct {
	Content  string         `json:"content"`
	FileName string         `json:"file_name"`
	Metadata map[string]any `json:"metadata"`
}

// Type returns the document type from metadata
func (d *DerivedDocument) Type() string {
	t, _ := d.Metadata["type"].(string)
	return t
}

// ID returns the canonical document identifier from metadata
func (d *DerivedDocument) ID() string {
	id, _ := d.Metadata["id"].(string)
	return id
}

// OriginalInput echoes back the essentials of the submission a batch was
// derived from
type OriginalInput struct {
	CompanyName   string `json:"company_name"`
	ProductsCount int    `json:"products_count"`
	Timestamp     string `json:"timestamp,omitempty"`
}

// DeriveResult is one full derivation batch. PurgeBefore is always true: the
// consumer must drop the company's previous document set before inserting
// this one (full replace, never merge).
type DeriveResult struct {
	CompanyID      string            `json:"company_id"`
	Documents      []DerivedDocument `json:"text_documents"`
	PurgeBefore    bool              `json:"purge_before"`
	ProcessedCount int               `json:"processed_count"`
	OriginalInput  OriginalInput     `json:"original_input"`
}

// StoredDocument is a derived document persisted in the relational store
type StoredDocument struct {
	ID        string          `db:"id" json:"id"`
	CompanyID string          `db:"company_id" json:"company_id"`
	DocID     string          `db:"doc_id" json:"doc_id"`
	DocType   string          `db:"doc_type" json:"doc_type"`
	FileName  string          `db:"file_name" json:"file_name"`
	Content   string          `db:"content" json:"content"`
	Metadata  json.RawMessage `db:"metadata" json:"metadata"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// DocumentListResponse is the paginated list response for stored documents
type DocumentListResponse struct {
	Items      []StoredDocument `json:"items"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
}

// DocumentResponse wraps a single stored document
type DocumentResponse struct {
	Document StoredDocument `json:"document"`
}
