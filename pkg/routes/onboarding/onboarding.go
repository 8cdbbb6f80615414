package onboarding

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/ZETA-AI-ORG/onboard/pkg/models"
	"github.com/ZETA-AI-ORG/onboard/pkg/processor"
	"github.com/ZETA-AI-ORG/onboard/pkg/tracing"
)

var validate = validator.New()

// Register registers onboarding submission routes
func Register(g *echo.Group) {
	g.POST("", Submit)
	g.POST("/derive", Derive)
}

// Submit runs the full pipeline for a submission: derive, store (replacing
// the company's previous documents), refresh the RAG config and emit events.
func Submit(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "onboarding_handler.Submit")
	defer span.End()

	record, err := bindRecord(c)
	if err != nil {
		return err
	}

	ctx, proc, err := ectoinject.GetContext[*processor.Processor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get processor")
	}

	batch, err := proc.ProcessSubmission(ctx, record)
	if err != nil {
		if httperror.IsHTTPError(err) {
			return err
		}
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to process submission")
	}

	return c.JSON(http.StatusOK, batch)
}

// Derive runs the derivation engine only, without persisting anything. Used
// to preview the document set a submission would produce.
func Derive(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "onboarding_handler.Derive")
	defer span.End()

	record, err := bindRecord(c)
	if err != nil {
		return err
	}

	ctx, proc, err := ectoinject.GetContext[*processor.Processor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get processor")
	}

	batch, err := proc.DeriveOnly(ctx, record)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to derive documents")
	}

	return c.JSON(http.StatusOK, batch)
}

// bindRecord reads the raw body and unwraps the workflow envelope. Binding
// raw keeps envelope handling identical to the Kafka path.
func bindRecord(c echo.Context) (*models.OnboardingRecord, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil || len(body) == 0 {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	record, err := models.UnwrapSubmission(json.RawMessage(body))
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "invalid submission payload")
	}

	if err := validate.Struct(record); err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return record, nil
}
