package anthropic

import (
	"encoding/json"
	"fmt"

	llmanalysis "github.com/lumenworks/analysis-llm-go"
)

// streamEvent is one decoded SSE payload from the Messages API.
type streamEvent struct {
	Type    string `json:"type"`
	Message *struct {
		Usage *apiUsage `json:"usage"`
	} `json:"message"`
	Delta *struct {
		Type     string `json:"type"` // "text_delta", "thinking_delta"
		Text     string `json:"text"`
		Thinking string `json:"thinking"`
	} `json:"delta"`
	Usage *struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *apiErrorBody `json:"error"`
}

// streamHandler holds per-stream usage state: message_start carries the
// input-side counts, but output_tokens is only authoritative on the
// terminal message_delta event. One usage chunk is emitted when both
// halves are known.
type streamHandler struct {
	input apiUsage
}

// OpenStream returns a handler for one stream.
func (a *Adapter) OpenStream() llmanalysis.StreamHandler {
	return &streamHandler{}
}

// HandleLine interprets one streaming event.
func (h *streamHandler) HandleLine(data string, emit func(llmanalysis.StreamChunk)) error {
	var ev streamEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return fmt.Errorf("failed to parse stream event: %w", llmanalysis.ErrInvalidResponse)
	}

	switch ev.Type {
	case "message_start":
		// Input-side accounting only; output_tokens here reflects the
		// first generated block and must not be trusted.
		if ev.Message != nil && ev.Message.Usage != nil {
			h.input = *ev.Message.Usage
		}
	case "content_block_delta":
		if ev.Delta == nil {
			return nil
		}
		switch ev.Delta.Type {
		case "text_delta":
			if ev.Delta.Text != "" {
				emit(llmanalysis.ContentChunk(ev.Delta.Text))
			}
		case "thinking_delta":
			if ev.Delta.Thinking != "" {
				emit(llmanalysis.ThinkingChunk(ev.Delta.Thinking))
			}
		}
	case "message_delta":
		if ev.Usage != nil {
			final := h.input
			final.OutputTokens = ev.Usage.OutputTokens
			if usage := normalizeUsage(&final); usage != nil {
				emit(llmanalysis.UsageChunk(*usage))
			}
		}
	case "error":
		message := "unknown streaming error"
		if ev.Error != nil && ev.Error.Message != "" {
			message = ev.Error.Message
		}
		return &llmanalysis.APIError{Provider: llmanalysis.ProviderAnthropic, Message: message}
	}
	// message_stop, ping, and content_block_start/stop carry nothing the
	// analysis pipeline needs.
	return nil
}
