// Package gemini implements the adapter for Google's Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	llmanalysis "github.com/lumenworks/analysis-llm-go"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Adapter speaks the Gemini wire protocol. Gemini is the odd one out
// twice over: the API key rides in the URL query rather than a header,
// and every streamed SSE line is a complete response-shaped object
// rather than a typed delta event.
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
	return llmanalysis.ProviderGemini
}

// apiRequest is the generateContent request body.
type apiRequest struct {
	Contents         []content        `json:"contents"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text    string `json:"text"`
	Thought bool   `json:"thought,omitempty"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generationConfig struct {
	Temperature        *float64               `json:"temperature,omitempty"`
	MaxOutputTokens    int                    `json:"maxOutputTokens"`
	ResponseMimeType   string                 `json:"responseMimeType,omitempty"`
	ResponseJsonSchema map[string]interface{} `json:"responseJsonSchema,omitempty"`
	ThinkingConfig     *thinkingConfig        `json:"thinking_config,omitempty"`
}

type thinkingConfig struct {
	ThinkingBudget  int  `json:"thinking_budget"`
	IncludeThoughts bool `json:"include_thoughts"`
}

// defaultSafetySettings disables Gemini's content filters. Book chapters
// routinely trip the default thresholds (violence in fiction, etc.), which
// would surface as empty candidates.
func defaultSafetySettings() []safetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}
	settings := make([]safetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, safetySetting{Category: c, Threshold: "BLOCK_NONE"})
	}
	return settings
}

// BuildRequest constructs the generateContent or streamGenerateContent
// call. Streaming requests add alt=sse so the response arrives as SSE
// lines instead of a JSON array.
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
		Contents: []content{
			{Role: "user", Parts: []part{{Text: req.Prompt.Text}}},
		},
		SafetySettings: defaultSafetySettings(),
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: maxTokens,
		},
	}

	if req.Schema != nil {
		apiReq.GenerationConfig.ResponseMimeType = "application/json"
		apiReq.GenerationConfig.ResponseJsonSchema = req.Schema.Schema
	}

	if budget := caps.EffortBudget(a.Provider(), req.Model, req.Effort); budget > 0 {
		apiReq.GenerationConfig.ThinkingConfig = &thinkingConfig{
			ThinkingBudget:  budget,
			IncludeThoughts: true,
		}
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	verb := "generateContent"
	query := url.Values{"key": {req.APIKey}}
	if stream {
		verb = "streamGenerateContent"
		query.Set("alt", "sse")
	}
	endpoint := fmt.Sprintf("%s/models/%s:%s?%s", a.baseURL, req.Model, verb, query.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return httpReq, nil
}
