package export_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billscan/internal/domain"
	"billscan/internal/export"
	"billscan/internal/pipeline"
	"billscan/internal/score"
	"billscan/internal/validator"
)

func resultFixture(t *testing.T) *pipeline.Result {
	t.Helper()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	engine := validator.NewEngine().WithNow(func() time.Time { return now })

	fields := &domain.ExtractedFields{
		VendorName:      "Acme Corp",
		ReferenceNumber: "INV-1001",
		TransactionDate: "2025-06-01",
		TotalAmount:     "15.00",
		Currency:        "USD",
		DocumentType:    "invoice",
		LineItems: []domain.LineItem{
			{Description: "Widget", Quantity: "2", UnitPrice: "5.00", Amount: "10.00"},
			{Description: "Gadget", Quantity: "1", UnitPrice: "5.00", Amount: "5.00"},
		},
	}
	results := engine.Validate(fields)

	return &pipeline.Result{
		RunID:             uuid.New(),
		Fields:            fields,
		Validation:        results,
		ValidationSummary: validator.Summarize(results),
		Scores: score.Merge(map[string]domain.ConfidenceScore{
			"vendor_name": {Confidence: 0.9, Reasoning: "clear header"},
		}, &domain.ConfidenceScore{Confidence: 0.85}),
		Scoring: &pipeline.ScoringOutcome{Succeeded: true},
		Usage:   pipeline.Usage{TotalCost: 0.0135},
	}
}

func TestBuildWorkbook(t *testing.T) {
	result := resultFixture(t)

	wb, err := export.BuildWorkbook(result)
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	sheets := wb.GetSheetList()
	assert.ElementsMatch(t, []string{"Summary", "Fields", "Line Items"}, sheets)

	vendor, err := wb.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", vendor)

	// Fields sheet: header row then one row per canonical field.
	header, err := wb.GetCellValue("Fields", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Field", header)
	firstField, err := wb.GetCellValue("Fields", "A2")
	require.NoError(t, err)
	assert.Equal(t, "vendor_name", firstField)

	// Line items land in order.
	desc, err := wb.GetCellValue("Line Items", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Widget", desc)
	amount, err := wb.GetCellValue("Line Items", "D3")
	require.NoError(t, err)
	assert.Equal(t, "5.00", amount)
}

func TestBuildWorkbook_ScoringSkipped(t *testing.T) {
	result := resultFixture(t)
	result.Scores = nil
	result.Scoring = &pipeline.ScoringOutcome{
		Succeeded: false,
		ErrorKind: domain.ErrKindAdmissionDenied,
		Message:   "daily budget exhausted",
	}

	wb, err := export.BuildWorkbook(result)
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	// The summary notes the skipped stage instead of fabricating confidence.
	rows, err := wb.GetRows("Summary")
	require.NoError(t, err)
	var found bool
	for _, row := range rows {
		if len(row) >= 2 && row[0] == "Scoring Skipped" {
			found = true
			assert.Equal(t, string(domain.ErrKindAdmissionDenied), row[1])
		}
	}
	assert.True(t, found, "summary should carry a Scoring Skipped row")
}
