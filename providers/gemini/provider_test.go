package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	llmanalysis "github.com/lumenworks/analysis-llm-go"
)

func decodeBody(t *testing.T, body io.ReadCloser) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read request body: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return m
}

func TestBuildRequestURL(t *testing.T) {
	adapter := New()
	req := &llmanalysis.AnalysisRequest{
		Prompt: llmanalysis.NewPrompt("analyze"),
		Model:  "gemini-2.5-flash",
		APIKey: "test-key",
	}

	streaming, err := adapter.BuildRequest(context.Background(), req, true)
	if err != nil {
		t.Fatalf("BuildRequest(stream): %v", err)
	}
	if !strings.Contains(streaming.URL.Path, "models/gemini-2.5-flash:streamGenerateContent") {
		t.Errorf("stream path = %s", streaming.URL.Path)
	}
	q := streaming.URL.Query()
	if q.Get("key") != "test-key" {
		t.Errorf("key param = %q", q.Get("key"))
	}
	if q.Get("alt") != "sse" {
		t.Errorf("alt param = %q, want sse", q.Get("alt"))
	}
	// The key rides in the URL, never in a header.
	if streaming.Header.Get("Authorization") != "" || streaming.Header.Get("x-goog-api-key") != "" {
		t.Error("no auth header expected")
	}

	blocking, err := adapter.BuildRequest(context.Background(), req, false)
	if err != nil {
		t.Fatalf("BuildRequest(blocking): %v", err)
	}
	if !strings.Contains(blocking.URL.Path, ":generateContent") {
		t.Errorf("blocking path = %s", blocking.URL.Path)
	}
	if blocking.URL.Query().Get("alt") != "" {
		t.Error("alt=sse only applies to streaming")
	}
}

func TestBuildRequestBody(t *testing.T) {
	adapter := New()
	req := &llmanalysis.AnalysisRequest{
		Prompt: llmanalysis.NewPrompt("analyze"),
		Model:  "gemini-2.5-flash",
		APIKey: "test-key",
		Effort: llmanalysis.EffortLow,
		Schema: &llmanalysis.StructuredSchema{
			Name:   "analysis",
			Schema: map[string]interface{}{"type": "object"},
		},
	}

	httpReq, err := adapter.BuildRequest(context.Background(), req, true)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}

	body := decodeBody(t, httpReq.Body)

	settings := body["safetySettings"].([]interface{})
	if len(settings) != 4 {
		t.Errorf("safety settings = %d, want 4", len(settings))
	}
	for _, s := range settings {
		if s.(map[string]interface{})["threshold"] != "BLOCK_NONE" {
			t.Errorf("safety threshold = %v, want BLOCK_NONE", s)
		}
	}

	gen := body["generationConfig"].(map[string]interface{})
	if gen["responseMimeType"] != "application/json" {
		t.Errorf("responseMimeType = %v", gen["responseMimeType"])
	}
	thinking, ok := gen["thinking_config"].(map[string]interface{})
	if !ok {
		t.Fatal("thinking_config missing")
	}
	// gemini-2.5-flash low effort maps to a 1024 token budget.
	if thinking["thinking_budget"] != float64(1024) || thinking["include_thoughts"] != true {
		t.Errorf("thinking_config = %v", thinking)
	}
}

func TestBuildRequestNoAPIKey(t *testing.T) {
	adapter := New()
	req := &llmanalysis.AnalysisRequest{
		Prompt: llmanalysis.NewPrompt("analyze"),
		Model:  "gemini-2.5-flash",
	}
	_, err := adapter.BuildRequest(context.Background(), req, false)
	if !errors.Is(err, llmanalysis.ErrNoAPIKey) {
		t.Errorf("error = %v, want ErrNoAPIKey", err)
	}
}

func TestParseResponse(t *testing.T) {
	adapter := New()
	body := `{
		"candidates": [{
			"content": {"parts": [
				{"text": "internal deliberation", "thought": true},
				{"text": "{\"a\": 1}"}
			]},
			"finishReason": "STOP"
		}],
		"usageMetadata": {
			"promptTokenCount": 120,
			"candidatesTokenCount": 30,
			"thoughtsTokenCount": 15,
			"cachedContentTokenCount": 60
		}
	}`

	text, usage, err := adapter.ParseResponse([]byte(body))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	// Thought parts never contribute to the assembled text.
	if text != `{"a": 1}` {
		t.Errorf("text = %q", text)
	}
	// Candidate and thought counts are disjoint: no subtraction.
	want := llmanalysis.UsageRecord{Input: 120, VisibleOutput: 30, Cached: 60, Reasoning: 15}
	if *usage != want {
		t.Errorf("usage = %+v, want %+v", *usage, want)
	}
}

func TestParseResponseErrors(t *testing.T) {
	adapter := New()

	t.Run("vendor error body", func(t *testing.T) {
		_, _, err := adapter.ParseResponse([]byte(`{"error": {"code": 429, "message": "quota exhausted", "status": "RESOURCE_EXHAUSTED"}}`))
		var apiErr *llmanalysis.APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "quota exhausted" {
			t.Errorf("error = %v, want APIError 'quota exhausted'", err)
		}
	})

	t.Run("blocked prompt", func(t *testing.T) {
		_, _, err := adapter.ParseResponse([]byte(`{"promptFeedback": {"blockReason": "SAFETY"}}`))
		var apiErr *llmanalysis.APIError
		if !errors.As(err, &apiErr) || !strings.Contains(apiErr.Message, "SAFETY") {
			t.Errorf("error = %v, want APIError naming the block reason", err)
		}
	})

	t.Run("only thought parts", func(t *testing.T) {
		_, _, err := adapter.ParseResponse([]byte(`{"candidates": [{"content": {"parts": [{"text": "x", "thought": true}]}}]}`))
		if !errors.Is(err, llmanalysis.ErrInvalidResponse) {
			t.Errorf("error = %v, want ErrInvalidResponse", err)
		}
	})
}

func TestHandleLineUsageOnlyOnFinishReason(t *testing.T) {
	handler := New().OpenStream()

	var chunks []llmanalysis.StreamChunk
	emit := func(c llmanalysis.StreamChunk) { chunks = append(chunks, c) }

	// Intermediate chunk: usageMetadata present but no finishReason, so no
	// usage chunk may be emitted.
	intermediate := `{
		"candidates": [{"content": {"parts": [{"text": "{\"a\":"}]}}],
		"usageMetadata": {"promptTokenCount": 120, "candidatesTokenCount": 5}
	}`
	if err := handler.HandleLine(intermediate, emit); err != nil {
		t.Fatalf("HandleLine: %v", err)
	}
	for _, c := range chunks {
		if c.Kind == llmanalysis.ChunkUsage {
			t.Fatal("usage emitted from a chunk without finishReason")
		}
	}

	final := `{
		"candidates": [{"content": {"parts": [{"text": " 1}"}]}, "finishReason": "STOP"}],
		"usageMetadata": {"promptTokenCount": 120, "candidatesTokenCount": 30, "thoughtsTokenCount": 15}
	}`
	if err := handler.HandleLine(final, emit); err != nil {
		t.Fatalf("HandleLine: %v", err)
	}

	var usage *llmanalysis.UsageRecord
	for _, c := range chunks {
		if c.Kind == llmanalysis.ChunkUsage {
			if usage != nil {
				t.Fatal("more than one usage chunk")
			}
			usage = c.Usage
		}
	}
	if usage == nil {
		t.Fatal("no usage chunk from the finishReason chunk")
	}
	if usage.Input != 120 || usage.VisibleOutput != 30 || usage.Reasoning != 15 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestHandleLineThinkingParts(t *testing.T) {
	handler := New().OpenStream()

	var chunks []llmanalysis.StreamChunk
	emit := func(c llmanalysis.StreamChunk) { chunks = append(chunks, c) }

	line := `{"candidates": [{"content": {"parts": [
		{"text": "pondering", "thought": true},
		{"text": "answer"}
	]}}]}`
	if err := handler.HandleLine(line, emit); err != nil {
		t.Fatalf("HandleLine: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	if chunks[0].Kind != llmanalysis.ChunkThinking || chunks[0].Text != "pondering" {
		t.Errorf("chunk 0 = %+v", chunks[0])
	}
	if chunks[1].Kind != llmanalysis.ChunkContent || chunks[1].Text != "answer" {
		t.Errorf("chunk 1 = %+v", chunks[1])
	}
}

func TestHandleLineErrorChunk(t *testing.T) {
	handler := New().OpenStream()
	err := handler.HandleLine(`{"error": {"code": 500, "message": "internal error"}}`, func(llmanalysis.StreamChunk) {})
	var apiErr *llmanalysis.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "internal error" {
		t.Errorf("error = %v, want APIError with vendor message", err)
	}
}
