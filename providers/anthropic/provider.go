// Package anthropic implements the adapter for Anthropic's Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	llmanalysis "github.com/lumenworks/analysis-llm-go"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1"

	apiVersion = "2023-06-01"

	// Structured outputs are gated behind a beta header.
	structuredOutputBeta = "structured-outputs-2025-11-13"
)

// Adapter speaks the Anthropic Messages wire protocol: x-api-key auth,
// typed SSE events, explicit prompt-cache control blocks, and output
// token accounting split across message_start and message_delta.
type Adapter struct {
	baseURL string
}

// New creates an adapter against the production endpoint.
func New() *Adapter {
	return &Adapter{baseURL: defaultBaseURL}
}

// NewWithBaseURL creates an adapter against a custom endpoint (tests,
// proxies).
func NewWithBaseURL(baseURL string) *Adapter {
	return &Adapter{baseURL: baseURL}
}

// Provider returns the provider identifier.
func (a *Adapter) Provider() llmanalysis.ProviderID {
	return llmanalysis.ProviderAnthropic
}

// apiRequest is the Messages API request body.
type apiRequest struct {
	Model        string          `json:"model"`
	MaxTokens    int             `json:"max_tokens"`
	Messages     []message       `json:"messages"`
	Stream       bool            `json:"stream,omitempty"`
	Temperature  *float64        `json:"temperature,omitempty"`
	Thinking     *thinkingConfig `json:"thinking,omitempty"`
	OutputFormat *outputFormat   `json:"output_format,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type         string        `json:"type"`
	Text         string        `json:"text,omitempty"`
	Thinking     string        `json:"thinking,omitempty"`
	CacheControl *cacheControl `json:"cache_control,omitempty"`
}

type cacheControl struct {
	Type string `json:"type"` // "ephemeral"
}

type thinkingConfig struct {
	Type         string `json:"type"` // "enabled"
	BudgetTokens int    `json:"budget_tokens"`
}

type outputFormat struct {
	Type   string                 `json:"type"` // "json_schema"
	Schema map[string]interface{} `json:"schema"`
}

// BuildRequest constructs the Messages API call. A split prompt becomes
// two content blocks with cache_control on the stable prefix; thinking
// and temperature are mutually exclusive on the wire.
func (a *Adapter) BuildRequest(ctx context.Context, req *llmanalysis.AnalysisRequest, stream bool) (*http.Request, error) {
	if req.APIKey == "" {
		return nil, &llmanalysis.NoAPIKeyError{Provider: a.Provider()}
	}

	caps := llmanalysis.GetCapabilityRegistry()
	maxTokens := req.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = caps.MaxOutputTokens(a.Provider(), req.Model)
	}

	var blocks []contentBlock
	if req.Prompt.IsSplit() {
		blocks = []contentBlock{
			{Type: "text", Text: req.Prompt.CachePrefix, CacheControl: &cacheControl{Type: "ephemeral"}},
			{Type: "text", Text: req.Prompt.CacheSuffix},
		}
	} else {
		blocks = []contentBlock{{Type: "text", Text: req.Prompt.Text}}
	}

	apiReq := apiRequest{
		Model:     req.Model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: blocks}},
		Stream:    stream,
	}

	if budget := caps.EffortBudget(a.Provider(), req.Model, req.Effort); budget > 0 {
		// The API requires max_tokens to exceed the thinking budget.
		if apiReq.MaxTokens <= budget {
			apiReq.MaxTokens = budget + 4096
		}
		apiReq.Thinking = &thinkingConfig{Type: "enabled", BudgetTokens: budget}
	} else {
		apiReq.Temperature = req.Temperature
	}

	if req.Schema != nil {
		apiReq.OutputFormat = &outputFormat{Type: "json_schema", Schema: req.Schema.Schema}
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-api-key", req.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Schema != nil {
		httpReq.Header.Set("anthropic-beta", structuredOutputBeta)
	}
	return httpReq, nil
}
