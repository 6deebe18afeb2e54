package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	llmanalysis "github.com/lumenworks/analysis-llm-go"
)

// apiResponse is the generateContent response shape. Streamed SSE lines
// carry the same shape with partial candidates.
type apiResponse struct {
	Candidates     []candidate     `json:"candidates"`
	UsageMetadata  *usageMetadata  `json:"usageMetadata"`
	PromptFeedback *promptFeedback `json:"promptFeedback"`
	Error          *apiErrorBody   `json:"error"`
}

type candidate struct {
	Content struct {
		Parts []part `json:"parts"`
	} `json:"content"`
	FinishReason string `json:"finishReason"`
}

type usageMetadata struct {
	PromptTokenCount        int `json:"promptTokenCount"`
	CandidatesTokenCount    int `json:"candidatesTokenCount"`
	ThoughtsTokenCount      int `json:"thoughtsTokenCount"`
	CachedContentTokenCount int `json:"cachedContentTokenCount"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type apiErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// normalizeUsage converts Gemini usage metadata into the canonical
// record. candidatesTokenCount and thoughtsTokenCount are disjoint, so no
// subtraction is needed.
func normalizeUsage(u *usageMetadata) *llmanalysis.UsageRecord {
	if u == nil {
		return nil
	}
	return &llmanalysis.UsageRecord{
		Input:         u.PromptTokenCount,
		VisibleOutput: u.CandidatesTokenCount,
		Cached:        u.CachedContentTokenCount,
		Reasoning:     u.ThoughtsTokenCount,
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
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", nil, &llmanalysis.APIError{
			Provider: a.Provider(),
			Message:  "prompt blocked: " + resp.PromptFeedback.BlockReason,
		}
	}

	var text strings.Builder
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Thought {
				continue
			}
			text.WriteString(p.Text)
		}
	}

	if text.Len() == 0 {
		return "", nil, fmt.Errorf("response contained no candidate text: %w", llmanalysis.ErrInvalidResponse)
	}
	return text.String(), normalizeUsage(resp.UsageMetadata), nil
}
