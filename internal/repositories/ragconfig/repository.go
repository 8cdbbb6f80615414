package ragconfig

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/ZETA-AI-ORG/onboard/pkg/database"
	"github.com/ZETA-AI-ORG/onboard/pkg/models"
	"github.com/ZETA-AI-ORG/onboard/pkg/tracing"
)

// Repository handles per-company RAG configuration persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Upsert writes the company's RAG configuration, replacing any existing row
func (r *Repository) Upsert(ctx context.Context, config *models.RagConfig) error {
	ctx, span := tracing.StartSpan(ctx, "ragconfig.Repository.Upsert")
	defer span.End()

	now := time.Now().UTC()

	ib := database.NewInsertBuilder()
	ib = ib.InsertInto("company_rag_configs")
	ib = ib.Cols("company_id", "system_prompt_template", "rag_enabled", "updated_at")
	ib = ib.Values(config.CompanyID, config.SystemPromptTemplate, config.RagEnabled, now)
	ub := ib.OnConflict("company_id")
	ub.Set(
		ub.Assign("system_prompt_template", database.Excluded("system_prompt_template")),
		ub.Assign("rag_enabled", database.Excluded("rag_enabled")),
		ub.Assign("updated_at", database.Excluded("updated_at")),
	)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"company_id": config.CompanyID,
		}).Error("Failed to upsert rag config")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert rag config")
	}
	config.UpdatedAt = now
	return nil
}

// GetByCompanyID retrieves a company's RAG configuration
func (r *Repository) GetByCompanyID(ctx context.Context, companyID string) (*models.RagConfig, error) {
	ctx, span := tracing.StartSpan(ctx, "ragconfig.Repository.GetByCompanyID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("company_id", "system_prompt_template", "rag_enabled", "updated_at")
	sb.From("company_rag_configs")
	sb.Where(sb.Equal("company_id", companyID))
	sb.Limit(1)

	query, args := sb.Build()
	var config models.RagConfig
	err := r.db.GetContext(ctx, &config, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "rag config not found")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"company_id": companyID,
		}).Error("Failed to get rag config")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get rag config")
	}
	return &config, nil
}
