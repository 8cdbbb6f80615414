package ragconfig

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	ragconfigrepo "github.com/ZETA-AI-ORG/onboard/internal/repositories/ragconfig"
	"github.com/ZETA-AI-ORG/onboard/pkg/events"
	"github.com/ZETA-AI-ORG/onboard/pkg/models"
	"github.com/ZETA-AI-ORG/onboard/pkg/reqctx"
	"github.com/ZETA-AI-ORG/onboard/pkg/tracing"
)

// Register registers RAG configuration routes
func Register(g *echo.Group) {
	g.GET("", Get)
	g.PUT("", Update)
}

// Get returns a company's RAG configuration
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "ragconfig_handler.Get")
	defer span.End()

	companyID := requireCompanyID(c)
	if companyID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "company_id is required")
	}

	ctx, repo, err := ectoinject.GetContext[*ragconfigrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	config, err := repo.GetByCompanyID(ctx, companyID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.RagConfigResponse{Config: *config})
}

// Update toggles or replaces parts of a company's RAG configuration
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "ragconfig_handler.Update")
	defer span.End()

	companyID := requireCompanyID(c)
	if companyID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "company_id is required")
	}

	var req models.UpdateRagConfigRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SystemPromptTemplate == nil && req.RagEnabled == nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "nothing to update")
	}

	ctx, repo, err := ectoinject.GetContext[*ragconfigrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	config, err := repo.GetByCompanyID(ctx, companyID)
	if err != nil {
		if httperror.GetStatusCode(err) != http.StatusNotFound {
			return err
		}
		config = &models.RagConfig{CompanyID: companyID, RagEnabled: true}
	}

	if req.SystemPromptTemplate != nil {
		config.SystemPromptTemplate = *req.SystemPromptTemplate
	}
	if req.RagEnabled != nil {
		config.RagEnabled = *req.RagEnabled
	}

	if err := repo.Upsert(ctx, config); err != nil {
		return err
	}

	// the config is stored; the event is advisory
	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil && emitter != nil {
		_ = emitter.EmitConfigUpdated(ctx, companyID)
	}

	return c.JSON(http.StatusOK, models.RagConfigResponse{Config: *config})
}

func requireCompanyID(c echo.Context) string {
	if companyID := c.QueryParam("company_id"); companyID != "" {
		return companyID
	}
	return reqctx.GetCompanyID(c.Request().Context())
}
