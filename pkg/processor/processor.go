// Package processor handles incoming onboarding submissions and manages the
// derivation pipeline: derive the document batch, replace the company's
// stored set, refresh the RAG configuration and announce the change.
package processor

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/ZETA-AI-ORG/onboard/internal/repositories/document"
	"github.com/ZETA-AI-ORG/onboard/internal/repositories/ragconfig"
	"github.com/ZETA-AI-ORG/onboard/pkg/engine"
	"github.com/ZETA-AI-ORG/onboard/pkg/events"
	"github.com/ZETA-AI-ORG/onboard/pkg/kafka"
	"github.com/ZETA-AI-ORG/onboard/pkg/models"
	"github.com/ZETA-AI-ORG/onboard/pkg/prompt"
	"github.com/ZETA-AI-ORG/onboard/pkg/tracing"
)

// Processor wires the derivation engine to storage and event emission
type Processor struct {
	logger        ectologger.Logger
	engine        *engine.Engine
	filler        *prompt.Filler
	documentRepo  *document.Repository
	ragConfigRepo *ragconfig.Repository
	emitter       *events.Emitter
	promptEnabled bool
}

func NewProcessor(
	logger ectologger.Logger,
	derivationEngine *engine.Engine,
	filler *prompt.Filler,
	documentRepo *document.Repository,
	ragConfigRepo *ragconfig.Repository,
	emitter *events.Emitter,
	promptEnabled bool,
) *Processor {
	return &Processor{
		logger:        logger,
		engine:        derivationEngine,
		filler:        filler,
		documentRepo:  documentRepo,
		ragConfigRepo: ragConfigRepo,
		emitter:       emitter,
		promptEnabled: promptEnabled,
	}
}

// HandleMessage is the Kafka consumer entrypoint. An error means the message
// should be redelivered; the whole pipeline is idempotent so that is safe.
func (p *Processor) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.HandleMessage")
	defer span.End()

	if msg.Submission == nil {
		if err := msg.ParseSubmission(); err != nil {
			return fmt.Errorf("failed to parse submission: %w", err)
		}
	}

	_, err := p.ProcessSubmission(ctx, msg.Submission)
	return err
}

// ProcessSubmission runs the full pipeline for one onboarding record and
// returns the derived batch
func (p *Processor) ProcessSubmission(ctx context.Context, record *models.OnboardingRecord) (*models.DeriveResult, error) {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.ProcessSubmission")
	defer span.End()

	batch, err := p.engine.Derive(ctx, record)
	if err != nil {
		return nil, err
	}

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"company_id":     batch.CompanyID,
		"document_count": batch.ProcessedCount,
	})

	if err := p.documentRepo.ReplaceBatch(ctx, batch); err != nil {
		log.WithError(err).Error("Failed to store document batch")
		return nil, err
	}

	if p.promptEnabled {
		config := p.filler.Fill(ctx, record)
		config.CompanyID = batch.CompanyID
		if err := p.ragConfigRepo.Upsert(ctx, config); err != nil {
			log.WithError(err).Error("Failed to store rag config")
			return nil, err
		}
	}

	if p.emitter != nil {
		if err := p.emitter.EmitDocumentsReplaced(ctx, batch); err != nil {
			// Storage succeeded; event emission failure should not fail the
			// submission, the state is already durable.
			log.WithError(err).Warn("Failed to emit documents.replaced event")
		}
	}

	log.Info("Processed onboarding submission")
	return batch, nil
}

// DeriveOnly runs the engine without touching storage, for the preview
// endpoint
func (p *Processor) DeriveOnly(ctx context.Context, record *models.OnboardingRecord) (*models.DeriveResult, error) {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.DeriveOnly")
	defer span.End()

	return p.engine.Derive(ctx, record)
}
