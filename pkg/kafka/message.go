package kafka

import (
	"time"

	"github.com/ZETA-AI-ORG/onboard/pkg/models"
)

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Trace context (extracted from Kafka headers)
	TraceParent string
	TraceState  string

	// Parsed content
	Submission *models.OnboardingRecord
}

// ParseSubmission parses the message value as an onboarding submission,
// unwrapping the workflow "body" envelope when present
func (m *IncomingMessage) ParseSubmission() error {
	record, err := models.UnwrapSubmission(m.Value)
	if err != nil {
		return err
	}
	m.Submission = record
	return nil
}

// GetCompanyID returns the company ID from the parsed submission, falling
// back to the message headers
func (m *IncomingMessage) GetCompanyID() string {
	if m.Submission != nil && m.Submission.CompanyID != "" {
		return m.Submission.CompanyID
	}
	return m.Headers["company_id"]
}
