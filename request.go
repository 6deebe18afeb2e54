package llmanalysis

import "fmt"

// ReasoningEffort selects how much internal deliberation the model is
// allowed before producing visible output. Each provider encodes it
// differently: OpenAI takes the level verbatim, Gemini and Anthropic map
// it to a thinking token budget through the capability registry.
type ReasoningEffort string

// Known reasoning effort levels.
const (
	EffortNone   ReasoningEffort = ""
	EffortLow    ReasoningEffort = "low"
	EffortMedium ReasoningEffort = "medium"
	EffortHigh   ReasoningEffort = "high"
)

// RequestPrompt is the text sent to the model. For providers that support
// prompt caching the prompt can be split into a stable cache prefix and a
// per-request suffix; Text always equals CachePrefix+CacheSuffix when
// split. Providers without prompt caching just use Text.
type RequestPrompt struct {
	// Text is the full prompt text.
	Text string

	// CachePrefix is the stable leading portion eligible for provider-side
	// prompt caching (empty when the prompt is not split).
	CachePrefix string

	// CacheSuffix is the per-request trailing portion (empty when the
	// prompt is not split).
	CacheSuffix string
}

// NewPrompt creates an unsplit prompt.
func NewPrompt(text string) RequestPrompt {
	return RequestPrompt{Text: text}
}

// NewCachedPrompt creates a split prompt. Text is derived so the
// prefix+suffix invariant always holds.
func NewCachedPrompt(prefix, suffix string) RequestPrompt {
	return RequestPrompt{
		Text:        prefix + suffix,
		CachePrefix: prefix,
		CacheSuffix: suffix,
	}
}

// IsSplit returns true if the prompt carries a cacheable prefix.
func (p RequestPrompt) IsSplit() bool {
	return p.CachePrefix != ""
}

// StructuredSchema describes the desired shape of the structured output:
// a name plus a JSON Schema object. Providers embed it in vendor-specific
// locations in the request body.
type StructuredSchema struct {
	Name   string
	Schema map[string]interface{}
}

// AnalysisRequest contains the parameters for one analysis generation.
// All values are per-request; nothing here outlives one call.
type AnalysisRequest struct {
	// Prompt is the chapter text plus instructions.
	Prompt RequestPrompt

	// Model is the vendor model identifier (e.g. "gemini-2.5-flash").
	Model string

	// APIKey authenticates the request. Required for all real providers.
	APIKey string

	// Temperature controls randomness. Ignored by providers when a
	// reasoning effort is set (reasoning models reject temperature).
	Temperature *float64

	// Effort selects the reasoning budget. EffortNone disables thinking.
	Effort ReasoningEffort

	// Schema, when set, requests schema-constrained structured output.
	Schema *StructuredSchema

	// MaxOutputTokens caps generation. Zero means the model's capability
	// default.
	MaxOutputTokens int
}

// Validate checks request parameters before any network activity.
func (r *AnalysisRequest) Validate() error {
	if r.Model == "" {
		return fmt.Errorf("model is required")
	}
	if r.Prompt.Text == "" {
		return fmt.Errorf("prompt text is required")
	}
	if r.Prompt.IsSplit() && r.Prompt.CachePrefix+r.Prompt.CacheSuffix != r.Prompt.Text {
		return fmt.Errorf("split prompt text must equal prefix+suffix")
	}
	if r.Temperature != nil {
		if *r.Temperature < 0.0 || *r.Temperature > 2.0 {
			return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", *r.Temperature)
		}
	}
	if r.MaxOutputTokens < 0 {
		return fmt.Errorf("max_output_tokens must be non-negative, got %d", r.MaxOutputTokens)
	}
	switch r.Effort {
	case EffortNone, EffortLow, EffortMedium, EffortHigh:
	default:
		return fmt.Errorf("effort must be '', 'low', 'medium', or 'high', got '%s'", r.Effort)
	}
	return nil
}
