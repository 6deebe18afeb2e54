// Package mock is a fake analysis provider that generates lorem ipsum
// payloads. Used for testing and development without real API keys.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	llmanalysis "github.com/lumenworks/analysis-llm-go"
)

// Provider implements llmanalysis.Analyzer directly, bypassing HTTP.
// Example models: "mock-fast", "mock-slow", "mock-medium".
type Provider struct {
	generator *loremgen.Lorem
}

// NewProvider creates a new mock provider.
func NewProvider() *Provider {
	return &Provider{generator: loremgen.New()}
}

// Provider returns the provider identifier.
func (p *Provider) Provider() llmanalysis.ProviderID {
	return llmanalysis.ProviderMock
}

// SupportsModel returns true if the model name starts with "mock-".
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "mock-")
}

// getStreamDelay returns the delay between thinking words based on the
// model name.
func getStreamDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 500 * time.Millisecond
	}
	if strings.Contains(model, "fast") {
		return time.Millisecond
	}
	return 50 * time.Millisecond
}

// mockInsight mirrors the insight object shape of a real analysis.
type mockInsight struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
}

// mockQuestion mirrors the quiz question shape of a real analysis.
type mockQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type mockPayload struct {
	Summary       string         `json:"summary"`
	Insights      []mockInsight  `json:"insights"`
	QuizQuestions []mockQuestion `json:"quiz_questions"`
}

func (p *Provider) buildPayload() mockPayload {
	payload := mockPayload{Summary: p.generator.Paragraph(2, 4)}
	for i := 0; i < 3; i++ {
		payload.Insights = append(payload.Insights, mockInsight{
			Title:       p.generator.Sentence(3, 6),
			Explanation: p.generator.Paragraph(1, 2),
		})
	}
	for i := 0; i < 2; i++ {
		payload.QuizQuestions = append(payload.QuizQuestions, mockQuestion{
			Question: p.generator.Sentence(5, 10) + "?",
			Answer:   p.generator.Sentence(3, 8),
		})
	}
	return payload
}

func (p *Provider) estimateUsage(req *llmanalysis.AnalysisRequest, outputText string) llmanalysis.UsageRecord {
	// No thinking phase, no reasoning tokens; otherwise scale with effort
	// like the real providers' budgets do.
	reasoning := 0
	switch req.Effort {
	case llmanalysis.EffortLow:
		reasoning = 16
	case llmanalysis.EffortMedium:
		reasoning = 48
	case llmanalysis.EffortHigh:
		reasoning = 96
	}
	return llmanalysis.UsageRecord{
		Input:         len(strings.Fields(req.Prompt.Text)),
		VisibleOutput: len(strings.Fields(outputText)),
		Reasoning:     reasoning,
	}
}

// Analyze generates a complete fake analysis (blocking).
func (p *Provider) Analyze(ctx context.Context, req *llmanalysis.AnalysisRequest) (*llmanalysis.AnalysisResult, error) {
	if err := p.validate(req); err != nil {
		return nil, err
	}

	payload := p.buildPayload()
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mock payload: %w", err)
	}

	usage := p.estimateUsage(req, string(raw))
	return &llmanalysis.AnalysisResult{
		Payload: raw,
		RawText: string(raw),
		Usage:   &usage,
	}, nil
}

// StreamAnalysis generates a streaming fake analysis: thinking words,
// per-item progress events, one usage event, one completed event.
func (p *Provider) StreamAnalysis(ctx context.Context, req *llmanalysis.AnalysisRequest) (<-chan llmanalysis.AnalysisStreamEvent, error) {
	if err := p.validate(req); err != nil {
		return nil, err
	}

	delay := getStreamDelay(req.Model)
	events := make(chan llmanalysis.AnalysisStreamEvent, 16)

	go func() {
		defer close(events)

		send := func(ev llmanalysis.AnalysisStreamEvent) bool {
			select {
			case <-ctx.Done():
				return false
			case events <- ev:
				return true
			}
		}

		// Thinking phase.
		if req.Effort != llmanalysis.EffortNone {
			words := strings.Fields(p.generator.Paragraph(1, 2))
			for _, word := range words {
				text := word + " "
				if !send(llmanalysis.AnalysisStreamEvent{Thinking: &text}) {
					return
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
			}
		}

		payload := p.buildPayload()
		raw, err := json.Marshal(payload)
		if err != nil {
			send(llmanalysis.AnalysisStreamEvent{Err: fmt.Errorf("failed to marshal mock payload: %w", err)})
			return
		}

		for i := range payload.Insights {
			if !send(llmanalysis.AnalysisStreamEvent{Insight: &llmanalysis.InsightProgress{Count: i + 1}}) {
				return
			}
		}
		for i := range payload.QuizQuestions {
			if !send(llmanalysis.AnalysisStreamEvent{Quiz: &llmanalysis.QuizProgress{Count: i + 1}}) {
				return
			}
		}

		usage := p.estimateUsage(req, string(raw))
		if !send(llmanalysis.AnalysisStreamEvent{Usage: &usage}) {
			return
		}
		send(llmanalysis.AnalysisStreamEvent{Completed: &llmanalysis.AnalysisResult{
			Payload: raw,
			RawText: string(raw),
			Usage:   &usage,
		}})
	}()

	return events, nil
}

func (p *Provider) validate(req *llmanalysis.AnalysisRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if !p.SupportsModel(req.Model) {
		return fmt.Errorf("model '%s' not supported by mock provider (must start with 'mock-')", req.Model)
	}
	return nil
}
