package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"billscan/internal/budget"
	"billscan/internal/domain"
	"billscan/internal/llm"
	"billscan/internal/port"
	"billscan/internal/score"
	"billscan/internal/validator"
)

// Pipeline sequences one document analysis run: admission check, extraction,
// usage recording, validation, admission check, scoring, usage recording,
// score normalization. Runs are strictly sequential internally; concurrent
// runs share the one budget Governor.
type Pipeline struct {
	governor  *budget.Governor
	extractor port.FieldExtractor
	scorer    port.ConfidenceScorer
	engine    *validator.Engine

	extractPricing budget.PricingTable
	scorePricing   budget.PricingTable
}

// New creates a Pipeline. The two pricing tables belong to the extraction and
// scoring models respectively; scoring is expected to be the cheaper one.
func New(
	governor *budget.Governor,
	extractor port.FieldExtractor,
	scorer port.ConfidenceScorer,
	engine *validator.Engine,
	extractPricing budget.PricingTable,
	scorePricing budget.PricingTable,
) *Pipeline {
	return &Pipeline{
		governor:       governor,
		extractor:      extractor,
		scorer:         scorer,
		engine:         engine,
		extractPricing: extractPricing,
		scorePricing:   scorePricing,
	}
}

// Usage aggregates the cost accounting of both AI stages. Each stage's record
// reflects the ledger at that stage's own call time, so the two
// remaining-budget values can differ within one run.
type Usage struct {
	Extraction *domain.UsageRecord `json:"extraction,omitempty"`
	Scoring    *domain.UsageRecord `json:"scoring,omitempty"`
	TotalCost  float64             `json:"total_cost"`
}

// ScoringOutcome reports whether the best-effort scoring stage ran. When it
// did not, the extracted and validated record is still returned.
type ScoringOutcome struct {
	Succeeded bool             `json:"succeeded"`
	ErrorKind domain.ErrorKind `json:"error_kind,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// Result is the outcome of one successful (or partially successful) run.
type Result struct {
	RunID             uuid.UUID               `json:"run_id"`
	Fields            *domain.ExtractedFields `json:"fields"`
	Validation        validator.Results       `json:"validation"`
	ValidationSummary validator.Summary       `json:"validation_summary"`
	Scores            *score.ScoreSet         `json:"scores,omitempty"`
	Scoring           *ScoringOutcome         `json:"scoring"`
	Usage             Usage                   `json:"usage"`
}

// StageError is a terminal pipeline failure: nothing usable was produced.
type StageError struct {
	Stage string // "extraction" or "scoring"
	Kind  domain.ErrorKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// classifyGatewayErr maps a gateway error to its caller-facing kind.
func classifyGatewayErr(err error) domain.ErrorKind {
	var authErr *llm.AuthError
	var rlErr *llm.RateLimitError
	var malformedErr *llm.MalformedResponseError
	switch {
	case errors.As(err, &authErr):
		return domain.ErrKindUpstreamAuth
	case errors.As(err, &rlErr):
		return domain.ErrKindUpstreamRateLimit
	case errors.As(err, &malformedErr):
		return domain.ErrKindMalformedResponse
	default:
		return domain.ErrKindUpstreamFailure
	}
}

// Run analyzes one document. Extraction-stage failures (including admission
// denial) are terminal. Scoring is best-effort: once extraction and
// validation have produced a usable record, a scoring-stage failure is
// reported on the result instead of discarding the run. That asymmetry is
// deliberate — the record is useful without confidence scores, but scores are
// meaningless without a record.
func (p *Pipeline) Run(ctx context.Context, input port.DocumentInput) (*Result, error) {
	runID := uuid.New()

	adm := p.governor.CheckAdmission()
	if !adm.Allowed {
		return nil, &StageError{
			Stage: "extraction",
			Kind:  domain.ErrKindAdmissionDenied,
			Err:   fmt.Errorf("daily budget exhausted: $%.4f of $%.2f used", adm.CurrentUsage, adm.Limit),
		}
	}

	extraction, err := p.extractor.Extract(ctx, input)
	if err != nil {
		return nil, &StageError{Stage: "extraction", Kind: classifyGatewayErr(err), Err: err}
	}
	extractUsage := p.governor.RecordUsage(extraction.Usage.InputTokens, extraction.Usage.OutputTokens, p.extractPricing)
	log.Printf("pipeline: run %s extracted via %s ($%.4f, %d/%d tokens)",
		runID, extraction.Model, extractUsage.Cost, extractUsage.InputTokens, extractUsage.OutputTokens)

	results := p.engine.Validate(extraction.Fields)
	summary := validator.Summarize(results)

	res := &Result{
		RunID:             runID,
		Fields:            extraction.Fields,
		Validation:        results,
		ValidationSummary: summary,
		Usage: Usage{
			Extraction: &extractUsage,
			TotalCost:  extractUsage.Cost,
		},
	}

	adm = p.governor.CheckAdmission()
	if !adm.Allowed {
		log.Printf("pipeline: run %s skipping scoring, daily budget exhausted ($%.4f of $%.2f)", runID, adm.CurrentUsage, adm.Limit)
		res.Scoring = &ScoringOutcome{
			Succeeded: false,
			ErrorKind: domain.ErrKindAdmissionDenied,
			Message:   fmt.Sprintf("daily budget exhausted: $%.4f of $%.2f used", adm.CurrentUsage, adm.Limit),
		}
		return res, nil
	}

	scoring, err := p.scorer.Score(ctx, port.ScoringInput{Fields: extraction.Fields, Validation: results})
	if err != nil {
		log.Printf("pipeline: run %s scoring failed, keeping extraction result: %v", runID, err)
		res.Scoring = &ScoringOutcome{
			Succeeded: false,
			ErrorKind: classifyGatewayErr(err),
			Message:   err.Error(),
		}
		return res, nil
	}

	scoreUsage := p.governor.RecordUsage(scoring.Usage.InputTokens, scoring.Usage.OutputTokens, p.scorePricing)
	log.Printf("pipeline: run %s scored via %s ($%.4f, %d/%d tokens)",
		runID, scoring.Model, scoreUsage.Cost, scoreUsage.InputTokens, scoreUsage.OutputTokens)

	res.Scores = score.Merge(scoring.Scores, scoring.Overall)
	res.Scoring = &ScoringOutcome{Succeeded: true}
	res.Usage.Scoring = &scoreUsage
	res.Usage.TotalCost = extractUsage.Cost + scoreUsage.Cost

	return res, nil
}
