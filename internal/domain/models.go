package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexString decodes a JSON string, number, or null into a string. The
// extraction model is inconsistent about quoting numeric-looking values
// ("1,234.50" vs 1234.5), so every field that feeds the validation engine
// tolerates both.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	// Bare number (or bool): keep its literal text.
	*f = FlexString(string(b))
	return nil
}

func (f FlexString) String() string { return string(f) }

// Float parses the value as a float64 after trimming whitespace.
func (f FlexString) Float() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(f)), 64)
	return v, err == nil
}

// LineItem is a single line entry on the source document. Amount is required
// and numeric-coercible; quantity and unit price are best-effort.
type LineItem struct {
	Description string     `json:"description"`
	Quantity    FlexString `json:"quantity,omitempty"`
	UnitPrice   FlexString `json:"unit_price,omitempty"`
	Amount      FlexString `json:"amount"`
}

// ExtractedFields is the raw field set returned by the extraction gateway for
// one document. It is created once per analysis call and consumed, unmodified,
// by the validation engine. Quality and missing_fields are the extractor's own
// assessment.
type ExtractedFields struct {
	VendorName        string            `json:"vendor_name"`
	ReferenceNumber   FlexString        `json:"reference_number"`
	TransactionDate   string            `json:"transaction_date"`
	PaymentDueDate    string            `json:"payment_due_date,omitempty"`
	TotalAmount       FlexString        `json:"total_amount"`
	Currency          string            `json:"currency"`
	CustomerName      string            `json:"customer_name,omitempty"`
	CustomerAddress   string            `json:"customer_address,omitempty"`
	LineItems         []LineItem        `json:"line_items"`
	ExtractionQuality ExtractionQuality `json:"extraction_quality"`
	DocumentType      string            `json:"document_type"`
	PaymentStatus     string            `json:"payment_status"`
	MissingFields     []string          `json:"missing_fields"`
}

// ConfidenceScore is one field's confidence as reported by the scoring
// gateway. Confidence may arrive on a 0-1 or 0-100 scale; it is normalized
// exactly once at the boundary (see internal/score).
type ConfidenceScore struct {
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// UsageRecord is the cost accounting for one AI-calling stage. DailyTotal and
// RemainingBudget reflect the ledger at the time this stage recorded its
// usage, so the extraction and scoring records of one run may legitimately
// differ.
type UsageRecord struct {
	InputTokens     int     `json:"input_tokens"`
	OutputTokens    int     `json:"output_tokens"`
	Cost            float64 `json:"cost"`
	DailyTotal      float64 `json:"daily_total"`
	DailyLimit      float64 `json:"daily_limit"`
	RemainingBudget float64 `json:"remaining_budget"`
}
