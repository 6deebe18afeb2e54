package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	llmanalysis "github.com/lumenworks/analysis-llm-go"
)

// apiResponse is the non-streaming Messages API body.
type apiResponse struct {
	Type       string         `json:"type"` // "message" or "error"
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      *apiUsage      `json:"usage"`
	Error      *apiErrorBody  `json:"error"`
}

type apiUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

type apiErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// normalizeUsage converts Messages API usage into the canonical record.
// input_tokens already folds in cache reads but not cache creation, so
// creation tokens are added; cache_read_input_tokens is reported
// separately as the cached share.
func normalizeUsage(u *apiUsage) *llmanalysis.UsageRecord {
	if u == nil {
		return nil
	}
	return &llmanalysis.UsageRecord{
		Input:         u.InputTokens + u.CacheCreationInputTokens,
		VisibleOutput: u.OutputTokens,
		Cached:        u.CacheReadInputTokens,
	}
}

// ParseResponse extracts assistant text and usage from a non-streaming
// response body.
func (a *Adapter) ParseResponse(body []byte) (string, *llmanalysis.UsageRecord, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", nil, fmt.Errorf("failed to parse response: %w", llmanalysis.ErrInvalidResponse)
	}
	if resp.Type == "error" || (resp.Error != nil && resp.Error.Message != "") {
		message := "unknown API error"
		if resp.Error != nil && resp.Error.Message != "" {
			message = resp.Error.Message
		}
		return "", nil, &llmanalysis.APIError{Provider: a.Provider(), Message: message}
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if resp.StopReason == "refusal" {
		message := text.String()
		if message == "" {
			message = "model refused to answer"
		}
		return "", nil, &llmanalysis.APIError{Provider: a.Provider(), Message: message}
	}
	if text.Len() == 0 {
		return "", nil, fmt.Errorf("response contained no text blocks: %w", llmanalysis.ErrInvalidResponse)
	}
	return text.String(), normalizeUsage(resp.Usage), nil
}
