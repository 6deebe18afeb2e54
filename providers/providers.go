// Package providers selects among the vendor adapters. The vendor set is
// closed: exactly three wire protocols plus the mock, matched
// exhaustively.
package providers

import (
	"fmt"

	llmanalysis "github.com/lumenworks/analysis-llm-go"
	"github.com/lumenworks/analysis-llm-go/providers/anthropic"
	"github.com/lumenworks/analysis-llm-go/providers/gemini"
	"github.com/lumenworks/analysis-llm-go/providers/mock"
	"github.com/lumenworks/analysis-llm-go/providers/openai"
)

// ForProvider returns the wire adapter for a vendor. The mock provider is
// not an adapter (it bypasses HTTP entirely); use NewAnalyzer for a
// uniform surface that includes it.
func ForProvider(id llmanalysis.ProviderID) (llmanalysis.Adapter, error) {
	switch id {
	case llmanalysis.ProviderOpenAI:
		return openai.New(), nil
	case llmanalysis.ProviderGemini:
		return gemini.New(), nil
	case llmanalysis.ProviderAnthropic:
		return anthropic.New(), nil
	default:
		return nil, fmt.Errorf("no adapter for provider '%s'", id)
	}
}

// NewAnalyzer returns a ready-to-use Analyzer for any known provider,
// wrapping the vendor adapters in a Client and returning the mock
// provider directly.
func NewAnalyzer(id llmanalysis.ProviderID, opts ...llmanalysis.Option) (llmanalysis.Analyzer, error) {
	if id == llmanalysis.ProviderMock {
		return mock.NewProvider(), nil
	}
	adapter, err := ForProvider(id)
	if err != nil {
		return nil, err
	}
	return llmanalysis.NewClient(adapter, opts...), nil
}
