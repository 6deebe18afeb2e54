package llmanalysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lumenworks/analysis-llm-go/telemetry"
)

// Default tracked keys for progress counting: insight objects carry a
// "title" field, quiz question objects carry a "question" field.
const (
	defaultInsightKey = "title"
	defaultQuizKey    = "question"
)

// Client drives one vendor adapter end to end: it opens the HTTP call,
// feeds bytes through the SSE decoder, hands decoded payloads to the
// adapter, tracks progress with the key scanner, and finalizes the
// accumulated text through the structured decoder.
//
// A Client is safe for concurrent use; every stream owns its own decoder,
// scanner, and accumulation buffer.
type Client struct {
	adapter        Adapter
	httpClient     *http.Client
	logger         *slog.Logger
	sink           RecordSink
	metrics        *telemetry.Metrics
	validateSchema bool
	insightKey     string
	quizKey        string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client. The default client carries no
// timeout: deadlines are the caller's responsibility, imposed through the
// request context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger overrides the structured logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRecordSink installs a debug capture sink for raw vendor payloads.
func WithRecordSink(s RecordSink) Option {
	return func(c *Client) { c.sink = s }
}

// WithMetrics installs Prometheus telemetry.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithSchemaValidation makes the client validate the decoded payload
// against the request schema and fail with ErrInvalidResponse on drift.
func WithSchemaValidation() Option {
	return func(c *Client) { c.validateSchema = true }
}

// WithProgressKeys overrides the JSON keys counted for insight and quiz
// progress events.
func WithProgressKeys(insightKey, quizKey string) Option {
	return func(c *Client) {
		c.insightKey = insightKey
		c.quizKey = quizKey
	}
}

// NewClient creates a client around one vendor adapter.
func NewClient(adapter Adapter, opts ...Option) *Client {
	c := &Client{
		adapter:    adapter,
		httpClient: &http.Client{},
		logger:     slog.Default(),
		insightKey: defaultInsightKey,
		quizKey:    defaultQuizKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the identity of the wrapped adapter.
func (c *Client) Provider() ProviderID {
	return c.adapter.Provider()
}

// Analyze runs a blocking (non-streaming) analysis and returns the
// decoded payload with normalized usage.
func (c *Client) Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	httpReq, err := c.adapter.BuildRequest(ctx, req, false)
	if err != nil {
		return nil, err
	}
	c.recordRequest(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s HTTP request failed: %w", c.Provider(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, vendorError(c.Provider(), resp.StatusCode, body)
	}

	if c.sink != nil {
		c.sink.RecordResponse(c.Provider(), body)
	}

	text, usage, err := c.adapter.ParseResponse(body)
	if err != nil {
		return nil, err
	}

	payload, err := DecodeStructured(text)
	if err != nil {
		return nil, err
	}
	if c.validateSchema {
		if err := ValidateAgainstSchema(payload, req.Schema); err != nil {
			return nil, err
		}
	}

	if usage != nil {
		c.metrics.RecordTokens(c.Provider().String(), usage.Input, usage.VisibleOutput, usage.Reasoning, usage.Cached)
	}

	return &AnalysisResult{Payload: payload, RawText: text, Usage: usage}, nil
}

// StreamAnalysis runs a streaming analysis. It returns after the
// connection is established; events arrive on the returned channel, which
// is closed after the terminal Completed or Err event. Cancelling ctx
// closes the underlying connection and suppresses any further Usage or
// Completed event.
func (c *Client) StreamAnalysis(ctx context.Context, req *AnalysisRequest) (<-chan AnalysisStreamEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	httpReq, err := c.adapter.BuildRequest(ctx, req, true)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	c.recordRequest(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s HTTP request failed: %w", c.Provider(), err)
	}

	// Connecting -> Failed: parse a vendor error body before degrading to
	// a bare status code.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, vendorError(c.Provider(), resp.StatusCode, body)
	}

	c.logger.Debug("analysis stream opened",
		"provider", c.Provider(), "model", req.Model, "effort", req.Effort)
	c.metrics.RecordStart(c.Provider().String())

	events := make(chan AnalysisStreamEvent, 16)
	go c.streamEvents(ctx, resp.Body, req, events)
	return events, nil
}

// streamEvents is the single producer for one stream: bytes are consumed
// strictly in arrival order because content deltas are order-dependent
// for JSON reassembly.
func (c *Client) streamEvents(ctx context.Context, body io.ReadCloser, req *AnalysisRequest, events chan<- AnalysisStreamEvent) {
	defer close(events)
	defer body.Close()

	provider := c.Provider()
	handler := c.adapter.OpenStream()
	decoder := &SSEDecoder{}
	scanner := NewIncrementalKeyScanner(c.insightKey, c.quizKey)

	var content strings.Builder
	var raw bytes.Buffer // full body, kept for the non-streaming fallback
	var usage *UsageRecord
	parsedAny := false
	done := false
	cancelled := false

	send := func(ev AnalysisStreamEvent) {
		// Checked before attempting delivery: once cancellation is
		// observable, nothing further may reach the consumer, even when
		// the buffered channel could still accept the event.
		if cancelled || ctx.Err() != nil {
			cancelled = true
			return
		}
		select {
		case <-ctx.Done():
			cancelled = true
		case events <- ev:
		}
	}

	fail := func(err error) {
		c.logger.Debug("analysis stream failed", "provider", provider, "error", err)
		c.metrics.RecordFailed(provider.String())
		// The terminal Err event bypasses the cancellation gate in send:
		// a failed stream must end with it. Buffer space delivers it
		// immediately; otherwise block until the consumer drains. Only a
		// cancelled consumer that stopped draining misses it.
		select {
		case events <- AnalysisStreamEvent{Err: err}:
		default:
			select {
			case events <- AnalysisStreamEvent{Err: err}:
			case <-ctx.Done():
			}
		}
	}

	handleChunk := func(chunk StreamChunk) {
		switch chunk.Kind {
		case ChunkThinking:
			text := chunk.Text
			send(AnalysisStreamEvent{Thinking: &text})
		case ChunkContent:
			content.WriteString(chunk.Text)
			found := scanner.Update(chunk.Text)
			for i := found[c.insightKey]; i > 0; i-- {
				send(AnalysisStreamEvent{Insight: &InsightProgress{Count: scanner.Count(c.insightKey) - i + 1}})
			}
			for i := found[c.quizKey]; i > 0; i-- {
				send(AnalysisStreamEvent{Quiz: &QuizProgress{Count: scanner.Count(c.quizKey) - i + 1}})
			}
		case ChunkUsage:
			// Exactly one usage event per stream. Duplicate terminal
			// markers (truncated or retried generations) keep the first.
			if usage != nil {
				return
			}
			u := *chunk.Usage
			usage = &u
			send(AnalysisStreamEvent{Usage: &u})
		}
	}

	// processLine interprets one logical SSE line. Returns a vendor error
	// when the stream must fail.
	processLine := func(line string) error {
		if line == "" || strings.HasPrefix(line, ":") {
			return nil
		}
		if !strings.HasPrefix(line, "data:") {
			return nil
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			done = true
			return nil
		}
		if c.sink != nil {
			c.sink.RecordStreamLine(provider, data)
		}
		if !json.Valid([]byte(data)) {
			// Keep-alives and vendor noise. Not counted as a payload, so
			// the fallback below can still engage.
			return nil
		}
		parsedAny = true
		return handler.HandleLine(data, handleChunk)
	}

	buf := make([]byte, 4096)
	for !done {
		n, err := body.Read(buf)
		if n > 0 {
			raw.Write(buf[:n])
			for _, line := range decoder.Append(buf[:n]) {
				if done || cancelled {
					break
				}
				if lineErr := processLine(line); lineErr != nil {
					// Streaming -> Failed: discard accumulated text.
					fail(lineErr)
					return
				}
			}
		}
		if cancelled {
			fail(ctx.Err())
			return
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			if ctx.Err() != nil {
				fail(ctx.Err())
				return
			}
			fail(fmt.Errorf("error reading stream: %w", err))
			return
		}
	}

	if !done && !cancelled {
		if line, ok := decoder.Finalize(); ok {
			if lineErr := processLine(line); lineErr != nil {
				fail(lineErr)
				return
			}
		}
	}

	if cancelled || ctx.Err() != nil {
		fail(context.Cause(ctx))
		return
	}

	// Finalizing.
	text := content.String()
	if !parsedAny {
		// Some vendor configurations answer a streaming request with a
		// plain response body and no SSE framing. Route the whole body
		// through the non-streaming parser instead of failing.
		c.logger.Debug("no SSE payloads received, falling back to non-streaming parse",
			"provider", provider, "bytes", raw.Len())
		fallbackText, fallbackUsage, err := c.adapter.ParseResponse(raw.Bytes())
		if err != nil {
			fail(err)
			return
		}
		text = fallbackText
		if fallbackUsage != nil && usage == nil {
			usage = fallbackUsage
			send(AnalysisStreamEvent{Usage: fallbackUsage})
		}
	}

	payload, err := DecodeStructured(text)
	if err != nil {
		fail(err)
		return
	}
	if c.validateSchema {
		if err := ValidateAgainstSchema(payload, req.Schema); err != nil {
			fail(err)
			return
		}
	}

	if cancelled {
		return
	}

	c.metrics.RecordCompleted(provider.String())
	if usage != nil {
		c.metrics.RecordTokens(provider.String(), usage.Input, usage.VisibleOutput, usage.Reasoning, usage.Cached)
	}
	send(AnalysisStreamEvent{Completed: &AnalysisResult{Payload: payload, RawText: text, Usage: usage}})
}

// recordRequest captures the outbound request body for debugging, with
// credentials redacted.
func (c *Client) recordRequest(httpReq *http.Request) {
	if c.sink == nil || httpReq == nil {
		return
	}
	var body []byte
	if httpReq.GetBody != nil {
		if rc, err := httpReq.GetBody(); err == nil {
			body, _ = io.ReadAll(rc)
			rc.Close()
		}
	}
	c.sink.RecordRequest(c.Provider(), requestEnvelope(c.Provider(), httpReq.URL.String(), body))
}

// vendorError interprets a non-success response body: a vendor JSON error
// message wins, otherwise the bare status code is surfaced.
func vendorError(provider ProviderID, status int, body []byte) error {
	if msg := gjson.GetBytes(body, "error.message").Str; msg != "" {
		return &APIError{Provider: provider, Message: msg}
	}
	if msg := gjson.GetBytes(body, "message").Str; msg != "" {
		return &APIError{Provider: provider, Message: msg}
	}
	return &HTTPError{Provider: provider, StatusCode: status}
}
