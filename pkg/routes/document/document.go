package document

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	documentrepo "github.com/ZETA-AI-ORG/onboard/internal/repositories/document"
	"github.com/ZETA-AI-ORG/onboard/pkg/models"
	"github.com/ZETA-AI-ORG/onboard/pkg/reqctx"
	"github.com/ZETA-AI-ORG/onboard/pkg/tracing"
)

// Register registers derived document routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.GET("/:doc_id", Get)
}

// List returns one page of a company's derived documents
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "document_handler.List")
	defer span.End()

	companyID := requireCompanyID(c)
	if companyID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "company_id is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}

	ctx, repo, err := ectoinject.GetContext[*documentrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, err := repo.ListByCompany(ctx, companyID, page, pageSize)
	if err != nil {
		return err
	}

	totalCount, err := repo.CountByCompany(ctx, companyID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.DocumentListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Get returns a single derived document by its canonical doc_id
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "document_handler.Get")
	defer span.End()

	companyID := requireCompanyID(c)
	if companyID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "company_id is required")
	}
	docID := c.Param("doc_id")

	ctx, repo, err := ectoinject.GetContext[*documentrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	doc, err := repo.GetByDocID(ctx, companyID, docID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.DocumentResponse{Document: *doc})
}

// requireCompanyID resolves the company from the query param, falling back
// to the X-Company-ID header
func requireCompanyID(c echo.Context) string {
	if companyID := c.QueryParam("company_id"); companyID != "" {
		return companyID
	}
	return reqctx.GetCompanyID(c.Request().Context())
}
