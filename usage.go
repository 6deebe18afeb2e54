package llmanalysis

// UsageRecord is the canonical token accounting shape all three vendors
// normalize into. Vendors disagree on whether reasoning tokens are folded
// into the output count and on how cache reads relate to input tokens;
// the per-provider normalization functions resolve those differences so
// that the invariants below always hold:
//
//   - VisibleOutput never includes reasoning tokens.
//   - Input already includes cache reads; cache creation is folded in
//     where the vendor bills it as input.
//   - Total() = Input + VisibleOutput + Reasoning.
type UsageRecord struct {
	// Input is the billed prompt token count.
	Input int

	// VisibleOutput is the output token count excluding reasoning.
	VisibleOutput int

	// Cached is the portion of Input served from the prompt cache.
	Cached int

	// Reasoning is the token count spent on internal deliberation.
	Reasoning int
}

// Total returns the full billed token count for the request.
func (u UsageRecord) Total() int {
	return u.Input + u.VisibleOutput + u.Reasoning
}

// EstimateCost computes an approximate USD cost from capability pricing.
// Cache reads are billed at the cache-read rate instead of the input
// rate; reasoning tokens bill as output.
func (u UsageRecord) EstimateCost(p PricingInfo) float64 {
	fresh := u.Input - u.Cached
	if fresh < 0 {
		fresh = 0
	}
	cost := float64(fresh) / 1e6 * p.InputPer1M
	cost += float64(u.Cached) / 1e6 * p.CacheReadPer1M
	cost += float64(u.VisibleOutput+u.Reasoning) / 1e6 * p.OutputPer1M
	return cost
}
