// Command analyze runs a chapter analysis against any supported provider
// from the terminal, with live progress while streaming.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	llmanalysis "github.com/lumenworks/analysis-llm-go"
	"github.com/lumenworks/analysis-llm-go/providers"
)

var (
	flagProvider    string
	flagModel       string
	flagFile        string
	flagEffort      string
	flagTemperature float64
	flagNoStream    bool
	flagShowCost    bool
	flagQuiet       bool
)

func main() {
	// A missing .env is fine; keys can come from the real environment.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "analyze",
		Short: "Generate a structured chapter analysis with an LLM provider",
		Long: `analyze sends chapter text to OpenAI, Gemini, Anthropic, or the
built-in mock provider and prints the structured analysis payload.

Text is read from --file, or from stdin when --file is omitted. API keys
are read from OPENAI_API_KEY, GEMINI_API_KEY, or ANTHROPIC_API_KEY
(a .env file in the working directory is loaded automatically).`,
		SilenceUsage: true,
		RunE:         run,
	}

	root.Flags().StringVarP(&flagProvider, "provider", "p", "mock", "provider: openai, gemini, anthropic, or mock")
	root.Flags().StringVarP(&flagModel, "model", "m", "mock-fast", "model identifier")
	root.Flags().StringVarP(&flagFile, "file", "f", "", "read chapter text from this file (default: stdin)")
	root.Flags().StringVarP(&flagEffort, "effort", "e", "", "reasoning effort: low, medium, or high")
	root.Flags().Float64VarP(&flagTemperature, "temperature", "t", 0, "sampling temperature (ignored when --effort is set)")
	root.Flags().BoolVar(&flagNoStream, "no-stream", false, "use the blocking endpoint instead of streaming")
	root.Flags().BoolVar(&flagShowCost, "cost", false, "print an estimated cost from the capability pricing tables")
	root.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "print only the final payload")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	id := llmanalysis.ProviderID(flagProvider)
	if !id.IsValid() {
		return fmt.Errorf("unknown provider '%s'", flagProvider)
	}

	text, err := readInput()
	if err != nil {
		return err
	}

	req := &llmanalysis.AnalysisRequest{
		Prompt: llmanalysis.NewPrompt(text),
		Model:  flagModel,
		APIKey: apiKeyFor(id),
		Effort: llmanalysis.ReasoningEffort(flagEffort),
	}
	if cmd.Flags().Changed("temperature") {
		req.Temperature = &flagTemperature
	}

	analyzer, err := providers.NewAnalyzer(id)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result *llmanalysis.AnalysisResult
	if flagNoStream {
		result, err = runBlocking(ctx, analyzer, req)
	} else {
		result, err = runStreaming(ctx, analyzer, req)
	}
	if err != nil {
		return err
	}

	printResult(id, result)
	return nil
}

func runBlocking(ctx context.Context, analyzer llmanalysis.Analyzer, req *llmanalysis.AnalysisRequest) (*llmanalysis.AnalysisResult, error) {
	spin := newSpinner("Analyzing...")
	spin.Start()
	result, err := analyzer.Analyze(ctx, req)
	spin.Stop()
	return result, err
}

func runStreaming(ctx context.Context, analyzer llmanalysis.Analyzer, req *llmanalysis.AnalysisRequest) (*llmanalysis.AnalysisResult, error) {
	spin := newSpinner("Connecting...")
	spin.Start()
	events, err := analyzer.StreamAnalysis(ctx, req)
	if err != nil {
		spin.Stop()
		return nil, err
	}

	thinking := false
	insights, quizzes := 0, 0
	status := func() string {
		return fmt.Sprintf("Streaming... %d insights, %d quiz questions", insights, quizzes)
	}
	spin.Suffix = " " + status()

	var result *llmanalysis.AnalysisResult
	for ev := range events {
		switch {
		case ev.Thinking != nil:
			if !thinking {
				thinking = true
				spin.Suffix = " Thinking..."
			}
		case ev.Insight != nil:
			insights = ev.Insight.Count
			spin.Suffix = " " + status()
		case ev.Quiz != nil:
			quizzes = ev.Quiz.Count
			spin.Suffix = " " + status()
		case ev.Usage != nil:
			// Printed with the final result.
		case ev.Completed != nil:
			result = ev.Completed
		case ev.Err != nil:
			spin.Stop()
			return nil, ev.Err
		}
	}
	spin.Stop()

	if result == nil {
		return nil, fmt.Errorf("stream ended without a result")
	}
	return result, nil
}

func printResult(id llmanalysis.ProviderID, result *llmanalysis.AnalysisResult) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result.Payload, "", "  "); err != nil {
		pretty.Write(result.Payload)
	}
	fmt.Println(pretty.String())

	if flagQuiet {
		return
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	if u := result.Usage; u != nil {
		bold.Fprintln(os.Stderr, "\nUsage")
		dim.Fprintf(os.Stderr, "  input: %d (cached %d)  output: %d  reasoning: %d  total: %d\n",
			u.Input, u.Cached, u.VisibleOutput, u.Reasoning, u.Total())
		if flagShowCost {
			if mc, ok := llmanalysis.GetCapabilityRegistry().ModelCapability(id, flagModel); ok {
				dim.Fprintf(os.Stderr, "  estimated cost: $%.6f\n", u.EstimateCost(mc.Pricing))
			}
		}
	}
}

func readInput() (string, error) {
	if flagFile != "" {
		data, err := os.ReadFile(flagFile)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", fmt.Errorf("no input text (pass --file or pipe text on stdin)")
	}
	return string(data), nil
}

func apiKeyFor(id llmanalysis.ProviderID) string {
	switch id {
	case llmanalysis.ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case llmanalysis.ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	case llmanalysis.ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return "unused"
	}
}

func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + suffix
	_ = s.Color("cyan")
	return s
}
