package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/ZETA-AI-ORG/onboard/pkg/database"
	"github.com/ZETA-AI-ORG/onboard/pkg/models"
	"github.com/ZETA-AI-ORG/onboard/pkg/tracing"
)

// Repository handles derived document persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// ReplaceBatch deletes every stored document for the batch's company and
// inserts the new set in the same transaction. The document store never
// merges: a submission replaces the company's corpus wholesale.
func (r *Repository) ReplaceBatch(ctx context.Context, batch *models.DeriveResult) error {
	ctx, span := tracing.StartSpan(ctx, "document.Repository.ReplaceBatch")
	defer span.End()

	callerCtx := ctx
	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	// roll back with the pre-GetTx context: the returned context marks the
	// transaction caller-owned, which makes Rollback a no-op
	defer tx.Rollback(callerCtx)

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom("derived_documents")
	db.Where(db.Equal("company_id", batch.CompanyID))
	query, args := db.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"company_id": batch.CompanyID,
		}).Error("Failed to purge existing documents")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to purge existing documents")
	}

	now := time.Now().UTC()

	docs := dedupeByDocID(batch.Documents)
	if dropped := len(batch.Documents) - len(docs); dropped > 0 {
		r.logger.WithContext(ctx).WithFields(map[string]any{
			"company_id": batch.CompanyID,
			"duplicates": dropped,
		}).Warn("Dropping duplicate document ids from batch")
	}

	// bulk insert in batches
	const batchSize = 100
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}

		ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
		ib.InsertInto("derived_documents")
		ib.Cols("id", "company_id", "doc_id", "doc_type", "file_name", "content", "metadata", "created_at", "updated_at")
		for _, doc := range docs[i:end] {
			metadata, err := json.Marshal(doc.Metadata)
			if err != nil {
				r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
					"company_id": batch.CompanyID,
					"doc_id":     doc.ID(),
				}).Error("Failed to marshal document metadata")
				return httperror.NewHTTPError(http.StatusInternalServerError, "failed to marshal document metadata")
			}
			ib.Values(uuid.New().String(), batch.CompanyID, doc.ID(), doc.Type(), doc.FileName, doc.Content, string(metadata), now, now)
		}
		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"company_id":     batch.CompanyID,
				"document_count": len(docs),
			}).Error("Failed to insert documents")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert documents")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"company_id": batch.CompanyID,
		}).Error("Failed to commit document batch")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}

	return nil
}

// dedupeByDocID keeps the last document for each doc id, in first-appearance
// order. Messy catalogues can derive the same id for two entries; the store
// keeps one row per (company_id, doc_id), last one wins.
func dedupeByDocID(docs []models.DerivedDocument) []models.DerivedDocument {
	index := make(map[string]int, len(docs))
	out := make([]models.DerivedDocument, 0, len(docs))
	for _, doc := range docs {
		if i, ok := index[doc.ID()]; ok {
			out[i] = doc
			continue
		}
		index[doc.ID()] = len(out)
		out = append(out, doc)
	}
	return out
}

// ListByCompany returns one page of a company's documents ordered by doc_id
func (r *Repository) ListByCompany(ctx context.Context, companyID string, page, pageSize int) ([]models.StoredDocument, error) {
	ctx, span := tracing.StartSpan(ctx, "document.Repository.ListByCompany")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 100
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "doc_id", "doc_type", "file_name", "content", "metadata", "created_at", "updated_at")
	sb.From("derived_documents")
	sb.Where(sb.Equal("company_id", companyID))
	sb.OrderBy("doc_id ASC")
	sb.Limit(pageSize)
	sb.Offset((page - 1) * pageSize)

	query, args := sb.Build()
	var documents []models.StoredDocument
	if err := r.db.SelectContext(ctx, &documents, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"company_id": companyID,
		}).Error("Failed to list documents")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list documents")
	}
	return documents, nil
}

// CountByCompany returns the number of stored documents for a company
func (r *Repository) CountByCompany(ctx context.Context, companyID string) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "document.Repository.CountByCompany")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("derived_documents")
	sb.Where(sb.Equal("company_id", companyID))

	query, args := sb.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"company_id": companyID,
		}).Error("Failed to count documents")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count documents")
	}
	return count, nil
}

// GetByDocID retrieves one document by (company_id, doc_id)
func (r *Repository) GetByDocID(ctx context.Context, companyID, docID string) (*models.StoredDocument, error) {
	ctx, span := tracing.StartSpan(ctx, "document.Repository.GetByDocID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "doc_id", "doc_type", "file_name", "content", "metadata", "created_at", "updated_at")
	sb.From("derived_documents")
	sb.Where(
		sb.Equal("company_id", companyID),
		sb.Equal("doc_id", docID),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var doc models.StoredDocument
	err := r.db.GetContext(ctx, &doc, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "document not found")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"company_id": companyID,
			"doc_id":     docID,
		}).Error("Failed to get document")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get document")
	}
	return &doc, nil
}
