package gemini

import (
	"encoding/json"
	"fmt"

	llmanalysis "github.com/lumenworks/analysis-llm-go"
)

type streamHandler struct{}

// OpenStream returns a handler for one stream.
func (a *Adapter) OpenStream() llmanalysis.StreamHandler {
	return streamHandler{}
}

// HandleLine interprets one streamed chunk. Every line is a full
// response-shaped object; usageMetadata appears on intermediate chunks
// too, but is only authoritative on the chunk carrying finishReason.
// Forwarding earlier usage would double-report, so it is dropped here.
func (h streamHandler) HandleLine(data string, emit func(llmanalysis.StreamChunk)) error {
	var chunk apiResponse
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return fmt.Errorf("failed to parse stream chunk: %w", llmanalysis.ErrInvalidResponse)
	}

	if chunk.Error != nil && chunk.Error.Message != "" {
		return &llmanalysis.APIError{Provider: llmanalysis.ProviderGemini, Message: chunk.Error.Message}
	}

	finished := false
	for _, cand := range chunk.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text == "" {
				continue
			}
			if p.Thought {
				emit(llmanalysis.ThinkingChunk(p.Text))
			} else {
				emit(llmanalysis.ContentChunk(p.Text))
			}
		}
		if cand.FinishReason != "" {
			finished = true
		}
	}

	if finished {
		if usage := normalizeUsage(chunk.UsageMetadata); usage != nil {
			emit(llmanalysis.UsageChunk(*usage))
		}
	}
	return nil
}
