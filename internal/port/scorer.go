package port

import (
	"context"

	"billscan/internal/domain"
	"billscan/internal/llm"
	"billscan/internal/validator"
)

// ScoringInput carries the extracted fields together with their validation
// results; the scorer weighs both.
type ScoringInput struct {
	Fields     *domain.ExtractedFields
	Validation validator.Results
}

// ScoringResult is the scoring gateway's raw output. Confidence values are on
// whatever scale the upstream model chose (0-1 or 0-100); normalization
// happens downstream in internal/score, never here.
type ScoringResult struct {
	Scores  map[string]domain.ConfidenceScore
	Overall *domain.ConfidenceScore
	Model   string
	Usage   llm.TokenUsage
}

// ConfidenceScorer abstracts the AI confidence scoring gateway.
type ConfidenceScorer interface {
	Score(ctx context.Context, input ScoringInput) (*ScoringResult, error)
}
