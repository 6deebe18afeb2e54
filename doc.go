// Package llmanalysis generates structured chapter analyses (summaries,
// insights, quiz questions) through a single interface over the OpenAI
// Responses API, Google's Gemini API, and Anthropic's Messages API.
//
// The root package owns everything vendor-neutral: the SSE line decoder,
// the incremental JSON key scanner that powers live progress events, the
// structured-output extractor, the canonical usage record, and the Client
// orchestrator. Each vendor's wire protocol lives in its own package
// under providers/.
//
// Basic streaming usage:
//
//	client := llmanalysis.NewClient(anthropic.New())
//	events, err := client.StreamAnalysis(ctx, &llmanalysis.AnalysisRequest{
//		Prompt: llmanalysis.NewPrompt(chapterText),
//		Model:  "claude-sonnet-4-5",
//		APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//		Effort: llmanalysis.EffortMedium,
//	})
//
// Or pick a provider by name with providers.NewAnalyzer, which also
// covers the no-network mock provider.
package llmanalysis
