package llm

import (
	"encoding/json"
	"fmt"
)

// BuildExtractionPrompt returns the field extraction prompt for a scanned
// financial document.
func BuildExtractionPrompt() string {
	return `You are a document data extraction assistant. Analyze the provided financial document (invoice, bill, or receipt) and extract its fields into the following JSON structure.

IMPORTANT INSTRUCTIONS:
- Normalize all dates to YYYY-MM-DD format. Strip timestamps and annotations.
- Extract EVERY line item. Do not skip, summarize, or omit any items.
- Report amounts exactly as printed on the document, including currency symbols.
- "extraction_quality" is your own assessment of document legibility: "high", "medium", or "low".
- List every field you could not find in "missing_fields".

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation — just the raw JSON object:
{
  "vendor_name": "",
  "reference_number": "",
  "transaction_date": "",
  "payment_due_date": "",
  "total_amount": "",
  "currency": "",
  "customer_name": "",
  "customer_address": "",
  "line_items": [
    { "description": "", "quantity": "", "unit_price": "", "amount": "" }
  ],
  "extraction_quality": "",
  "document_type": "",
  "payment_status": "",
  "missing_fields": []
}`
}

// BuildScoringPrompt returns the confidence scoring prompt. The extracted
// fields and the validation verdicts are embedded as JSON so the scorer can
// weigh both what was read and whether it held up.
func BuildScoringPrompt(fieldsJSON, validationJSON json.RawMessage) string {
	return fmt.Sprintf(`You are a data quality auditor. Below are fields extracted from a scanned financial document, followed by the results of deterministic validation checks on those fields.

Extracted fields:
%s

Validation results:
%s

For each extracted field, estimate the confidence that the extracted value is what the document actually says, and give a one-sentence reasoning. Also give an "overall_confidence" for the record as a whole.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation:
{
  "scores": {
    "vendor_name": { "confidence": 0.0, "reasoning": "" },
    "reference_number": { "confidence": 0.0, "reasoning": "" },
    "transaction_date": { "confidence": 0.0, "reasoning": "" },
    "payment_due_date": { "confidence": 0.0, "reasoning": "" },
    "total_amount": { "confidence": 0.0, "reasoning": "" },
    "currency": { "confidence": 0.0, "reasoning": "" },
    "customer_name": { "confidence": 0.0, "reasoning": "" }
  },
  "overall_confidence": { "confidence": 0.0, "reasoning": "" }
}`, fieldsJSON, validationJSON)
}
