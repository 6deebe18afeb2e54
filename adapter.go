package llmanalysis

import (
	"context"
	"net/http"
)

// ProviderID represents a unique provider identifier.
// Using a typed constant prevents typos and provides compile-time safety.
type ProviderID string

// Known provider identifiers
const (
	// ProviderOpenAI is OpenAI's Responses API
	ProviderOpenAI ProviderID = "openai"

	// ProviderGemini is Google's Gemini API
	ProviderGemini ProviderID = "gemini"

	// ProviderAnthropic is Anthropic's Messages API
	ProviderAnthropic ProviderID = "anthropic"

	// ProviderMock is the fake provider for testing and development
	ProviderMock ProviderID = "mock"
)

// String returns the string representation of the provider ID
func (p ProviderID) String() string {
	return string(p)
}

// IsValid returns true if the provider ID is a known provider
func (p ProviderID) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderGemini, ProviderAnthropic, ProviderMock:
		return true
	default:
		return false
	}
}

// Adapter encapsulates one vendor's wire protocol: request encoding,
// non-streaming response parsing, and streaming event interpretation.
// The vendor set is fixed and small, so the three implementations live
// under providers/ and are selected exhaustively rather than through an
// open registry.
//
// Adapters are stateless and safe for concurrent use; all per-stream
// state lives in the StreamHandler returned by OpenStream.
type Adapter interface {
	// Provider returns the vendor this adapter speaks to.
	Provider() ProviderID

	// BuildRequest constructs a ready-to-send HTTP request: vendor
	// endpoint URL, auth headers, and JSON body. stream selects between
	// the vendor's streaming and blocking endpoints/flags.
	BuildRequest(ctx context.Context, req *AnalysisRequest, stream bool) (*http.Request, error)

	// ParseResponse extracts assistant text and usage from a
	// non-streaming vendor response body. A vendor error object yields an
	// APIError (refusals included, carrying the refusal text); a shape
	// mismatch or empty text yields ErrInvalidResponse.
	ParseResponse(body []byte) (string, *UsageRecord, error)

	// OpenStream returns a fresh handler for one SSE stream. Each stream
	// owns its own handler; handlers are never shared.
	OpenStream() StreamHandler
}

// StreamHandler interprets decoded SSE payloads for one stream.
type StreamHandler interface {
	// HandleLine interprets one JSON payload from one SSE data line,
	// emitting zero or more content/thinking/usage chunks. A vendor
	// error event returns an APIError, which fails the stream.
	HandleLine(data string, emit func(StreamChunk)) error
}

// Analyzer is the capability set consumers program against. Client
// implements it over a vendor Adapter; the mock provider implements it
// directly.
type Analyzer interface {
	// Analyze runs a blocking (non-streaming) analysis.
	Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error)

	// StreamAnalysis runs a streaming analysis. The channel is closed
	// after the terminal Completed or Err event. Cancelling ctx closes
	// the underlying connection; no Usage or Completed event is emitted
	// after the cancellation point.
	StreamAnalysis(ctx context.Context, req *AnalysisRequest) (<-chan AnalysisStreamEvent, error)

	// Provider returns the provider identity.
	Provider() ProviderID
}
