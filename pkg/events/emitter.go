// Package events handles event emission for derived document lifecycle
// changes.
package events

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/ZETA-AI-ORG/onboard/pkg/kafka"
	"github.com/ZETA-AI-ORG/onboard/pkg/models"
	"github.com/ZETA-AI-ORG/onboard/pkg/tracing"
)

// Event types published on the document events topic
const (
	EventTypeDocumentsReplaced = "documents.replaced"
	EventTypeConfigUpdated     = "config.updated"
)

// SchemaVersion is the current document event schema version
const SchemaVersion = "1"

// Emitter publishes document lifecycle events
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitDocumentsReplaced announces that a company's document set was fully
// replaced by a new derivation batch
func (e *Emitter) EmitDocumentsReplaced(ctx context.Context, batch *models.DeriveResult) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitDocumentsReplaced")
	defer span.End()

	ids := make([]string, len(batch.Documents))
	for i := range batch.Documents {
		ids[i] = batch.Documents[i].ID()
	}

	event := &kafka.DocumentEvent{
		EventType:     EventTypeDocumentsReplaced,
		SchemaVersion: SchemaVersion,
		CorrelationID: uuid.New().String(),
		CompanyID:     batch.CompanyID,
		DocumentCount: batch.ProcessedCount,
		DocumentIDs:   ids,
		PurgeBefore:   batch.PurgeBefore,
	}

	if err := e.producer.PublishDocumentEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit documents.replaced event")
		return err
	}

	return nil
}

// EmitConfigUpdated announces a change to a company's RAG configuration
func (e *Emitter) EmitConfigUpdated(ctx context.Context, companyID string) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitConfigUpdated")
	defer span.End()

	event := &kafka.DocumentEvent{
		EventType:     EventTypeConfigUpdated,
		SchemaVersion: SchemaVersion,
		CorrelationID: uuid.New().String(),
		CompanyID:     companyID,
	}

	if err := e.producer.PublishDocumentEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit config.updated event")
		return err
	}

	return nil
}
