package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"billscan/internal/config"
	"billscan/internal/domain"
	"billscan/internal/llm"
	"billscan/internal/port"
)

const (
	apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	provider   = "gemini"
)

// Scorer implements port.ConfidenceScorer using Google's Gemini API. Scoring
// is text-only and runs on a cheaper model than extraction.
type Scorer struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewScorer creates a Gemini-based confidence scorer.
func NewScorer(cfg *config.GatewayConfig) *Scorer {
	return newScorer(cfg, "")
}

// NewScorerWithEndpoint creates a scorer pointing at a custom API endpoint (for testing).
func NewScorerWithEndpoint(cfg *config.GatewayConfig, endpoint string) *Scorer {
	return newScorer(cfg, endpoint)
}

func newScorer(cfg *config.GatewayConfig, endpoint string) *Scorer {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Scorer{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Score asks the model to grade each extracted field given the validation
// verdicts. Confidence values are returned on whatever scale the model chose;
// normalization is the caller's concern.
func (s *Scorer) Score(ctx context.Context, input port.ScoringInput) (*port.ScoringResult, error) {
	fieldsJSON, err := json.Marshal(input.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshaling fields: %w", err)
	}
	validationJSON, err := json.Marshal(input.Validation)
	if err != nil {
		return nil, fmt.Errorf("marshaling validation results: %w", err)
	}

	prompt := llm.BuildScoringPrompt(fieldsJSON, validationJSON)

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  4096,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, llm.ClassifyStatus(provider, resp.StatusCode, respBody, resp.Header.Get("Retry-After"))
	}

	return parseResponse(respBody, s.model)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func parseResponse(body []byte, model string) (*port.ScoringResult, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &llm.MalformedResponseError{Provider: provider, Err: fmt.Errorf("unmarshaling response: %w", err)}
	}

	if len(resp.Candidates) == 0 {
		return nil, &llm.MalformedResponseError{Provider: provider, Err: fmt.Errorf("empty response from API: no candidates")}
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &llm.MalformedResponseError{Provider: provider, Err: fmt.Errorf("empty response from API: no parts")}
	}

	text := resp.Candidates[0].Content.Parts[0].Text

	var parsed struct {
		Scores  map[string]domain.ConfidenceScore `json:"scores"`
		Overall *domain.ConfidenceScore           `json:"overall_confidence"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, &llm.MalformedResponseError{
			Provider: provider,
			Err:      fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(text, 500)),
		}
	}
	if len(parsed.Scores) == 0 {
		return nil, &llm.MalformedResponseError{Provider: provider, Err: fmt.Errorf("response contains no scores")}
	}

	return &port.ScoringResult{
		Scores:  parsed.Scores,
		Overall: parsed.Overall,
		Model:   model,
		Usage: llm.TokenUsage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		},
	}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
