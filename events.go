package llmanalysis

import "encoding/json"

// Chunk kind constants for low-level stream fragments.
const (
	ChunkContent  = "content"  // visible output text, accumulated for the final payload
	ChunkThinking = "thinking" // model deliberation text, surfaced but never accumulated
	ChunkUsage    = "usage"    // normalized token accounting
)

// StreamChunk is a low-level fragment produced by a provider stream
// handler before JSON reassembly. Exactly one of Text (for content and
// thinking kinds) or Usage (for the usage kind) is meaningful.
type StreamChunk struct {
	Kind  string
	Text  string
	Usage *UsageRecord
}

// ContentChunk creates a content chunk.
func ContentChunk(text string) StreamChunk {
	return StreamChunk{Kind: ChunkContent, Text: text}
}

// ThinkingChunk creates a thinking chunk.
func ThinkingChunk(text string) StreamChunk {
	return StreamChunk{Kind: ChunkThinking, Text: text}
}

// UsageChunk creates a usage chunk.
func UsageChunk(u UsageRecord) StreamChunk {
	return StreamChunk{Kind: ChunkUsage, Usage: &u}
}

// InsightProgress reports that the scanner spotted another insight object
// in the partial stream. Count is the running total so far. These counts
// are progress telemetry only; the final payload is the source of truth.
type InsightProgress struct {
	Count int
}

// QuizProgress reports another quiz question spotted in the partial
// stream. Count is the running total so far.
type QuizProgress struct {
	Count int
}

// AnalysisResult is the terminal outcome of a successful analysis.
type AnalysisResult struct {
	// Payload is the extracted JSON object, conforming to the requested
	// schema. Callers unmarshal it into their own types.
	Payload json.RawMessage

	// RawText is the full assembled assistant text the payload was
	// extracted from (may include vendor commentary around the JSON).
	RawText string

	// Usage is the normalized token accounting, when the provider
	// reported it.
	Usage *UsageRecord
}

// AnalysisStreamEvent represents a single event in a streaming analysis.
// Exactly one field is non-nil per event.
//
// A successful stream emits zero or more Thinking/Insight/Quiz events,
// exactly one Usage event, and exactly one Completed event; Completed is
// always the last event before the channel closes. A failed stream ends
// with a single Err event and surfaces no partial results.
type AnalysisStreamEvent struct {
	// Thinking contains incremental model deliberation text.
	Thinking *string

	// Insight is set when a new insight object is detected mid-stream.
	Insight *InsightProgress

	// Quiz is set when a new quiz question is detected mid-stream.
	Quiz *QuizProgress

	// Usage contains the normalized token accounting for the stream.
	Usage *UsageRecord

	// Completed carries the final structured payload.
	Completed *AnalysisResult

	// Err terminates a failed stream.
	Err error
}
