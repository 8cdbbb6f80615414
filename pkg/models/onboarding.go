package models

import "encoding/json"

// OnboardingRecord is one structured onboarding form submission: company
// identity, product catalogue and finalisation (delivery, payment, contact,
// FAQ) data. CompanyID partitions every document derived from it.
type OnboardingRecord struct {
	CompanyID    string       `json:"company_id" validate:"required"`
	Identity     Identity     `json:"identity"`
	Catalogue    []Product    `json:"catalogue"`
	Finalisation Finalisation `json:"finalisation"`
	Timestamp    string       `json:"timestamp,omitempty"`
}

// Identity describes the company and its AI assistant
type Identity struct {
	CompanyName  string `json:"companyName"`
	IAName       string `json:"iaName"`
	ActivityZone string `json:"activityZone"`
	Description  string `json:"description"`
	Mission      string `json:"mission"`
	IAObjective  string `json:"iaObjective"`
}

// Product is one catalogue entry. Products without a name are dropped by the
// derivation engine.
type Product struct {
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	Variants    []Variant `json:"variants"`
	Usage       string    `json:"usage"`
	Notes       string    `json:"notes"`
}

// Variant is one sellable configuration of a product. Price is in FCFA.
// ID may be pre-assigned by the catalogue form; when absent the engine derives one.
type Variant struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int     `json:"price"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	ID          string  `json:"id,omitempty"`
}

// PricePerUnit returns Price/Quantity when both are positive, 0 otherwise.
// A variant missing either value still participates, it just degrades.
func (v Variant) PricePerUnit() float64 {
	if v.Price > 0 && v.Quantity > 0 {
		return float64(v.Price) / v.Quantity
	}
	return 0
}

// Finalisation holds the last onboarding step: delivery conditions as one
// delimited free-text blob, payment setup, contact info and the FAQ.
type Finalisation struct {
	Delivery string     `json:"delivery"`
	Payment  *Payment   `json:"payment"`
	Contact  *Contact   `json:"contact"`
	FAQ      []FAQEntry `json:"faq"`
}

// Payment describes accepted payment methods and their numbers. DepositAmount
// is the validation deposit in FCFA, 0 when the form left it blank.
type Payment struct {
	Methods         []string          `json:"methods"`
	Numbers         map[string]string `json:"numbers"`
	AcompteRequired bool              `json:"acompteRequired"`
	PrepaidOnly     bool              `json:"prepaidOnly"`
	DepositAmount   int               `json:"depositAmount,omitempty"`
}

// Contact describes support reachability and the physical-store situation
type Contact struct {
	Phone            string `json:"phone"`
	Hours            string `json:"hours"`
	HasPhysicalStore bool   `json:"hasPhysicalStore"`
	ReturnPolicy     string `json:"returnPolicy"`
}

// FAQEntry is one question/answer pair
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SubmissionEnvelope is the wire shape submitted by the workflow engine. The
// record may arrive embedded in a generic "body" wrapper or directly at the
// top level.
type SubmissionEnvelope struct {
	Body *json.RawMessage `json:"body,omitempty"`
}

// UnwrapSubmission parses raw submission bytes into an OnboardingRecord,
// unwrapping the "body" envelope when present.
func UnwrapSubmission(raw json.RawMessage) (*OnboardingRecord, error) {
	var env SubmissionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	payload := raw
	if env.Body != nil {
		payload = *env.Body
	}

	var record OnboardingRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
