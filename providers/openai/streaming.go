package openai

import (
	"encoding/json"
	"fmt"

	llmanalysis "github.com/lumenworks/analysis-llm-go"
)

// Responses API streaming event types.
const (
	eventTextDelta      = "response.output_text.delta"
	eventReasoningDelta = "response.reasoning_summary_text.delta"
	eventCompleted      = "response.completed"
	eventError          = "error"
)

// streamEvent is one decoded SSE payload from the Responses API.
type streamEvent struct {
	Type     string        `json:"type"`
	Delta    string        `json:"delta"`
	Response *apiResponse  `json:"response"`
	Error    *apiErrorBody `json:"error"`
}

type streamHandler struct{}

// OpenStream returns a handler for one stream. The Responses protocol is
// stateless per event: usage arrives fully assembled on the terminal
// response.completed event.
func (a *Adapter) OpenStream() llmanalysis.StreamHandler {
	return streamHandler{}
}

// HandleLine interprets one streaming event. Usage is taken only from
// response.completed; no other event carries authoritative accounting.
func (h streamHandler) HandleLine(data string, emit func(llmanalysis.StreamChunk)) error {
	var ev streamEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return fmt.Errorf("failed to parse stream event: %w", llmanalysis.ErrInvalidResponse)
	}

	switch ev.Type {
	case eventTextDelta:
		if ev.Delta != "" {
			emit(llmanalysis.ContentChunk(ev.Delta))
		}
	case eventReasoningDelta:
		if ev.Delta != "" {
			emit(llmanalysis.ThinkingChunk(ev.Delta))
		}
	case eventCompleted:
		if ev.Response != nil {
			if usage := normalizeUsage(ev.Response.Usage); usage != nil {
				emit(llmanalysis.UsageChunk(*usage))
			}
		}
	case eventError:
		message := "unknown streaming error"
		if ev.Error != nil && ev.Error.Message != "" {
			message = ev.Error.Message
		}
		return &llmanalysis.APIError{Provider: llmanalysis.ProviderOpenAI, Message: message}
	}
	// Other event types (response.created, output_item lifecycle, etc.)
	// carry nothing the analysis pipeline needs.
	return nil
}
