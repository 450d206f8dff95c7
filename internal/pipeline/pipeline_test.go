package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billscan/internal/budget"
	"billscan/internal/domain"
	"billscan/internal/llm"
	"billscan/internal/pipeline"
	"billscan/internal/port"
	"billscan/internal/validator"
)

type fakeExtractor struct {
	result *port.ExtractionResult
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(_ context.Context, _ port.DocumentInput) (*port.ExtractionResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeScorer struct {
	result *port.ScoringResult
	err    error
	calls  int
	input  port.ScoringInput
}

func (f *fakeScorer) Score(_ context.Context, input port.ScoringInput) (*port.ScoringResult, error) {
	f.calls++
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

var (
	extractPricing = budget.PricingTable{InputPerMillion: 3.0, OutputPerMillion: 15.0}
	scorePricing   = budget.PricingTable{InputPerMillion: 0.10, OutputPerMillion: 0.40}
)

func goodExtraction() *port.ExtractionResult {
	return &port.ExtractionResult{
		Fields: &domain.ExtractedFields{
			VendorName:      "Acme Corp",
			ReferenceNumber: "INV-1001",
			TransactionDate: "2025-06-01",
			TotalAmount:     "15.00",
			Currency:        "USD",
		},
		Model: "extract-model",
		Usage: llm.TokenUsage{InputTokens: 2000, OutputTokens: 500},
	}
}

func goodScoring() *port.ScoringResult {
	return &port.ScoringResult{
		Scores: map[string]domain.ConfidenceScore{
			"vendor_name":  {Confidence: 95, Reasoning: "clear header"},
			"total_amount": {Confidence: 0.7},
		},
		Overall: &domain.ConfidenceScore{Confidence: 0.82},
		Model:   "score-model",
		Usage:   llm.TokenUsage{InputTokens: 1000, OutputTokens: 200},
	}
}

func newTestPipeline(limit float64, ex port.FieldExtractor, sc port.ConfidenceScorer) *pipeline.Pipeline {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	g := budget.NewGovernor(limit).WithNow(func() time.Time { return now })
	engine := validator.NewEngine().WithNow(func() time.Time { return now })
	return pipeline.New(g, ex, sc, engine, extractPricing, scorePricing)
}

func doc() port.DocumentInput {
	return port.DocumentInput{FileBytes: []byte("%PDF-1.4"), ContentType: "application/pdf"}
}

func TestRun_FullSuccess(t *testing.T) {
	ex := &fakeExtractor{result: goodExtraction()}
	sc := &fakeScorer{result: goodScoring()}
	p := newTestPipeline(5.0, ex, sc)

	res, err := p.Run(context.Background(), doc())
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", res.RunID.String())
	assert.Equal(t, "Acme Corp", res.Fields.VendorName)
	assert.True(t, res.Validation["vendor_name"].Valid)
	assert.Equal(t, 7, res.ValidationSummary.Total)

	require.NotNil(t, res.Scoring)
	assert.True(t, res.Scoring.Succeeded)
	require.NotNil(t, res.Scores)
	assert.Equal(t, domain.BandHigh, res.Scores.Get("vendor_name").Band)
	assert.InDelta(t, 0.95, res.Scores.Get("vendor_name").Confidence, 1e-9)

	// Usage: both stages recorded, totals add up.
	require.NotNil(t, res.Usage.Extraction)
	require.NotNil(t, res.Usage.Scoring)
	assert.InDelta(t, extractPricing.Cost(2000, 500), res.Usage.Extraction.Cost, 1e-9)
	assert.InDelta(t, scorePricing.Cost(1000, 200), res.Usage.Scoring.Cost, 1e-9)
	assert.InDelta(t, res.Usage.Extraction.Cost+res.Usage.Scoring.Cost, res.Usage.TotalCost, 1e-9)

	// Each record reflects the ledger at its own call time.
	assert.Greater(t, res.Usage.Extraction.RemainingBudget, res.Usage.Scoring.RemainingBudget)

	// The scorer sees the validation results, not just the raw fields.
	assert.NotNil(t, sc.input.Validation["total_amount"])
}

func TestRun_AdmissionDeniedBeforeExtraction(t *testing.T) {
	ex := &fakeExtractor{result: goodExtraction()}
	sc := &fakeScorer{result: goodScoring()}
	// A zero limit means usage (0) already equals the limit.
	p := newTestPipeline(0, ex, sc)

	res, err := p.Run(context.Background(), doc())
	assert.Nil(t, res, "admission denial at extraction is terminal")
	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "extraction", stageErr.Stage)
	assert.Equal(t, domain.ErrKindAdmissionDenied, stageErr.Kind)
	assert.Zero(t, ex.calls, "no gateway call is made when admission is denied")
	assert.Zero(t, sc.calls)
}

func TestRun_ExtractionFailureIsTerminal(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind domain.ErrorKind
	}{
		{"auth", &llm.AuthError{Provider: "claude", Err: errors.New("bad key")}, domain.ErrKindUpstreamAuth},
		{"rate limit", llm.NewRateLimitError("claude", errors.New("429"), 30), domain.ErrKindUpstreamRateLimit},
		{"malformed", &llm.MalformedResponseError{Provider: "claude", Err: errors.New("bad json")}, domain.ErrKindMalformedResponse},
		{"generic", errors.New("connection reset"), domain.ErrKindUpstreamFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sc := &fakeScorer{result: goodScoring()}
			p := newTestPipeline(5.0, &fakeExtractor{err: tc.err}, sc)

			res, err := p.Run(context.Background(), doc())
			assert.Nil(t, res)
			var stageErr *pipeline.StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, "extraction", stageErr.Stage)
			assert.Equal(t, tc.kind, stageErr.Kind)
			assert.ErrorIs(t, err, tc.err)
			assert.Zero(t, sc.calls, "scoring never runs after a failed extraction")
		})
	}
}

func TestRun_ScoringFailurePreservesResult(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind domain.ErrorKind
	}{
		{"rate limit", llm.NewRateLimitError("gemini", errors.New("429"), 0), domain.ErrKindUpstreamRateLimit},
		{"malformed", &llm.MalformedResponseError{Provider: "gemini", Err: errors.New("not json")}, domain.ErrKindMalformedResponse},
		{"generic", errors.New("timeout"), domain.ErrKindUpstreamFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPipeline(5.0, &fakeExtractor{result: goodExtraction()}, &fakeScorer{err: tc.err})

			res, err := p.Run(context.Background(), doc())
			require.NoError(t, err, "a scoring failure must not discard the run")
			require.NotNil(t, res)

			assert.NotNil(t, res.Fields)
			assert.NotNil(t, res.Validation)
			assert.Nil(t, res.Scores)
			require.NotNil(t, res.Scoring)
			assert.False(t, res.Scoring.Succeeded)
			assert.Equal(t, tc.kind, res.Scoring.ErrorKind)
			assert.NotEmpty(t, res.Scoring.Message)

			// Only the extraction stage was billed.
			assert.Nil(t, res.Usage.Scoring)
			assert.InDelta(t, res.Usage.Extraction.Cost, res.Usage.TotalCost, 1e-9)
		})
	}
}

func TestRun_BudgetExhaustedMidRunSkipsScoring(t *testing.T) {
	// Limit tuned so the extraction charge alone crosses it: 2000/500 tokens at
	// the extraction pricing cost $0.0135.
	sc := &fakeScorer{result: goodScoring()}
	p := newTestPipeline(0.01, &fakeExtractor{result: goodExtraction()}, sc)

	res, err := p.Run(context.Background(), doc())
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Zero(t, sc.calls, "scoring is skipped once the budget is exhausted")
	require.NotNil(t, res.Scoring)
	assert.False(t, res.Scoring.Succeeded)
	assert.Equal(t, domain.ErrKindAdmissionDenied, res.Scoring.ErrorKind)
	assert.NotNil(t, res.Usage.Extraction)
	assert.Nil(t, res.Usage.Scoring)
}

func TestRun_AliasScoresVisibleOnResult(t *testing.T) {
	p := newTestPipeline(5.0, &fakeExtractor{result: goodExtraction()}, &fakeScorer{result: goodScoring()})

	res, err := p.Run(context.Background(), doc())
	require.NoError(t, err)

	assert.Same(t, res.Scores.Fields["total_amount"], res.Scores.Fields["amount_due"])
	assert.Same(t, res.Validation["total_amount"], res.Validation["amount_due"])
}
