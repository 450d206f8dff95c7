package port

import (
	"context"

	"billscan/internal/domain"
	"billscan/internal/llm"
)

// DocumentInput carries one document image or PDF for analysis. One document
// per invocation; there is no batching.
type DocumentInput struct {
	FileBytes   []byte
	ContentType string
}

// ExtractionResult is the extraction gateway's output: the raw field set plus
// the token usage needed for cost accounting.
type ExtractionResult struct {
	Fields *domain.ExtractedFields
	Model  string
	Usage  llm.TokenUsage
}

// FieldExtractor abstracts the AI extraction gateway.
type FieldExtractor interface {
	Extract(ctx context.Context, input DocumentInput) (*ExtractionResult, error)
}
