package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	llmanalysis "github.com/lumenworks/analysis-llm-go"
)

// apiResponse is the non-streaming Responses API body. The same shape
// rides inside the "response" field of a response.completed stream event.
type apiResponse struct {
	Output []outputItem  `json:"output"`
	Usage  *apiUsage     `json:"usage"`
	Error  *apiErrorBody `json:"error"`
}

type outputItem struct {
	Type    string          `json:"type"` // "message", "reasoning"
	Content []outputContent `json:"content"`
}

type outputContent struct {
	Type string `json:"type"` // "output_text", "refusal"
	Text string `json:"text"`
}

type apiUsage struct {
	InputTokens        int `json:"input_tokens"`
	InputTokensDetails struct {
		CachedTokens int `json:"cached_tokens"`
	} `json:"input_tokens_details"`
	OutputTokens        int `json:"output_tokens"`
	OutputTokensDetails struct {
		ReasoningTokens int `json:"reasoning_tokens"`
	} `json:"output_tokens_details"`
}

type apiErrorBody struct {
	Message string `json:"message"`
}

// normalizeUsage converts raw Responses API usage into the canonical
// record. output_tokens is inclusive of reasoning tokens, so the visible
// count is the difference.
func normalizeUsage(u *apiUsage) *llmanalysis.UsageRecord {
	if u == nil {
		return nil
	}
	return &llmanalysis.UsageRecord{
		Input:         u.InputTokens,
		VisibleOutput: u.OutputTokens - u.OutputTokensDetails.ReasoningTokens,
		Cached:        u.InputTokensDetails.CachedTokens,
		Reasoning:     u.OutputTokensDetails.ReasoningTokens,
	}
}

// ParseResponse extracts assistant text and usage from a non-streaming
// response body.
func (a *Adapter) ParseResponse(body []byte) (string, *llmanalysis.UsageRecord, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", nil, fmt.Errorf("failed to parse response: %w", llmanalysis.ErrInvalidResponse)
	}
	if resp.Error != nil && resp.Error.Message != "" {
		return "", nil, &llmanalysis.APIError{Provider: a.Provider(), Message: resp.Error.Message}
	}

	var text strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			switch content.Type {
			case "output_text":
				text.WriteString(content.Text)
			case "refusal":
				// An explicit refusal is a vendor-reported error, not an
				// empty success.
				return "", nil, &llmanalysis.APIError{Provider: a.Provider(), Message: content.Text}
			}
		}
	}

	if text.Len() == 0 {
		return "", nil, fmt.Errorf("response contained no output text: %w", llmanalysis.ErrInvalidResponse)
	}
	return text.String(), normalizeUsage(resp.Usage), nil
}
