package llmanalysis

import (
	"math"
	"testing"
)

func TestUsageRecordTotal(t *testing.T) {
	u := UsageRecord{Input: 511, VisibleOutput: 200, Cached: 50, Reasoning: 64}
	if got := u.Total(); got != 775 {
		t.Errorf("Total() = %d, want 775", got)
	}
}

func TestUsageRecordEstimateCost(t *testing.T) {
	pricing := PricingInfo{
		InputPer1M:     3.00,
		OutputPer1M:    15.00,
		CacheReadPer1M: 0.30,
	}

	u := UsageRecord{Input: 1_000_000, VisibleOutput: 100_000, Cached: 500_000, Reasoning: 100_000}

	// 500k fresh input at $3/M + 500k cached at $0.30/M + 200k output-side
	// tokens at $15/M.
	want := 0.5*3.00 + 0.5*0.30 + 0.2*15.00
	if got := u.EstimateCost(pricing); math.Abs(got-want) > 1e-9 {
		t.Errorf("EstimateCost() = %f, want %f", got, want)
	}

	// Cached larger than input must not go negative.
	odd := UsageRecord{Input: 10, Cached: 20}
	if got := odd.EstimateCost(pricing); got < 0 {
		t.Errorf("EstimateCost() = %f, want non-negative", got)
	}
}
