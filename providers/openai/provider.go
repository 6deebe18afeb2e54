// Package openai implements the adapter for OpenAI's Responses API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	llmanalysis "github.com/lumenworks/analysis-llm-go"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Adapter speaks the OpenAI Responses wire protocol: POST /responses with
// bearer auth, typed streaming events, and reasoning-inclusive output
// token accounting.
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
	return llmanalysis.ProviderOpenAI
}

// apiRequest is the Responses API request body.
type apiRequest struct {
	Model           string           `json:"model"`
	Input           []inputMessage   `json:"input"`
	MaxOutputTokens int              `json:"max_output_tokens"`
	Stream          bool             `json:"stream,omitempty"`
	Temperature     *float64         `json:"temperature,omitempty"`
	Reasoning       *reasoningConfig `json:"reasoning,omitempty"`
	Text            *textConfig      `json:"text,omitempty"`
}

type inputMessage struct {
	Role    string      `json:"role"`
	Content []inputPart `json:"content"`
}

type inputPart struct {
	Type string `json:"type"` // "input_text"
	Text string `json:"text"`
}

type reasoningConfig struct {
	Effort string `json:"effort"`
}

type textConfig struct {
	Format *formatSpec `json:"format,omitempty"`
}

type formatSpec struct {
	Type   string                 `json:"type"` // "json_schema"
	Name   string                 `json:"name"`
	Schema map[string]interface{} `json:"schema"`
	Strict bool                   `json:"strict"`
}

// BuildRequest constructs the Responses API call. Reasoning models take a
// reasoning.effort level instead of temperature; the two are mutually
// exclusive on the wire.
func (a *Adapter) BuildRequest(ctx context.Context, req *llmanalysis.AnalysisRequest, stream bool) (*http.Request, error) {
	if req.APIKey == "" {
		return nil, &llmanalysis.NoAPIKeyError{Provider: a.Provider()}
	}

	caps := llmanalysis.GetCapabilityRegistry()
	maxTokens := req.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = caps.MaxOutputTokens(a.Provider(), req.Model)
	}

	apiReq := apiRequest{
		Model: req.Model,
		Input: []inputMessage{
			{
				Role:    "user",
				Content: []inputPart{{Type: "input_text", Text: req.Prompt.Text}},
			},
		},
		MaxOutputTokens: maxTokens,
		Stream:          stream,
	}

	if req.Effort != llmanalysis.EffortNone {
		apiReq.Reasoning = &reasoningConfig{Effort: string(req.Effort)}
	} else {
		apiReq.Temperature = req.Temperature
	}

	if req.Schema != nil {
		apiReq.Text = &textConfig{
			Format: &formatSpec{
				Type:   "json_schema",
				Name:   req.Schema.Name,
				Schema: req.Schema.Schema,
				Strict: true,
			},
		}
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	return httpReq, nil
}
