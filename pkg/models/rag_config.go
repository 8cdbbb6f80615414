package models

import "time"

// RagConfig is the per-company retrieval configuration row produced alongside
// a derivation batch: the filled system prompt template plus the RAG toggle.
type RagConfig struct {
	CompanyID            string    `db:"company_id" json:"company_id"`
	SystemPromptTemplate string    `db:"system_prompt_template" json:"system_prompt_template"`
	RagEnabled           bool      `db:"rag_enabled" json:"rag_enabled"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// UpdateRagConfigRequest toggles or replaces a company's RAG configuration
type UpdateRagConfigRequest struct {
	SystemPromptTemplate *string `json:"system_prompt_template,omitempty"`
	RagEnabled           *bool   `json:"rag_enabled,omitempty"`
}

// RagConfigResponse wraps a single RAG configuration row
type RagConfigResponse struct {
	Config RagConfig `json:"config"`
}
