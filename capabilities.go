package llmanalysis

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/capabilities/openai.yaml
var openaiCapabilitiesYAML []byte

//go:embed config/capabilities/gemini.yaml
var geminiCapabilitiesYAML []byte

//go:embed config/capabilities/anthropic.yaml
var anthropicCapabilitiesYAML []byte

// Capabilities Philosophy:
//
// This file provides MODEL METADATA for budget sizing, pricing estimates,
// and informational purposes. It does NOT enforce validation - provider
// APIs are the source of truth.
//
// Capabilities may be outdated as providers release new models. Library
// users can override embedded capabilities by:
//  1. Calling LoadCapabilitiesFromFile() with custom YAML
//  2. Calling RegisterProviderCapabilities() programmatically

// ProviderCapabilities represents the capability configuration for one provider
type ProviderCapabilities struct {
	Version     string                     `yaml:"version"`      // Semantic version (e.g., "1.0.0")
	LastUpdated string                     `yaml:"last_updated"` // ISO 8601 date (e.g., "2025-01-15")
	Provider    string                     `yaml:"provider"`
	Defaults    ModelCapability            `yaml:"defaults"` // Fallback for unknown models
	Models      map[string]ModelCapability `yaml:"models"`
}

// ModelCapability represents the capabilities of a specific model
type ModelCapability struct {
	ContextWindow   int                `yaml:"context_window"`
	MaxOutputTokens int                `yaml:"max_output_tokens"`
	Thinking        ThinkingCapability `yaml:"thinking"`
	Pricing         PricingInfo        `yaml:"pricing"`
}

// ThinkingCapability defines reasoning/thinking constraints
type ThinkingCapability struct {
	Supported      bool           `yaml:"supported"`
	EffortToBudget map[string]int `yaml:"effort_to_budget"` // "low" -> 2048, etc.
}

// PricingInfo contains model pricing in USD per million tokens
type PricingInfo struct {
	InputPer1M      float64 `yaml:"input_per_1m"`
	OutputPer1M     float64 `yaml:"output_per_1m"`
	CacheWritePer1M float64 `yaml:"cache_write_per_1m"`
	CacheReadPer1M  float64 `yaml:"cache_read_per_1m"`
}

// CapabilityRegistry manages provider capabilities
type CapabilityRegistry struct {
	capabilities map[ProviderID]*ProviderCapabilities
	mu           sync.RWMutex
}

var (
	globalRegistry     *CapabilityRegistry
	globalRegistryOnce sync.Once
)

// GetCapabilityRegistry returns the global capability registry (singleton)
func GetCapabilityRegistry() *CapabilityRegistry {
	globalRegistryOnce.Do(func() {
		globalRegistry = &CapabilityRegistry{
			capabilities: make(map[ProviderID]*ProviderCapabilities),
		}
		embedded := map[ProviderID][]byte{
			ProviderOpenAI:    openaiCapabilitiesYAML,
			ProviderGemini:    geminiCapabilitiesYAML,
			ProviderAnthropic: anthropicCapabilitiesYAML,
		}
		for id, raw := range embedded {
			if err := globalRegistry.loadYAML(id, raw); err != nil {
				// Don't panic on a stale embed - budget lookups fall back
				// to defaults.
				fmt.Fprintf(os.Stderr, "Warning: failed to load %s capabilities: %v\n", id, err)
			}
		}
	})
	return globalRegistry
}

func (r *CapabilityRegistry) loadYAML(id ProviderID, raw []byte) error {
	var caps ProviderCapabilities
	if err := yaml.Unmarshal(raw, &caps); err != nil {
		return fmt.Errorf("parse capabilities YAML: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[id] = &caps
	return nil
}

// LoadCapabilitiesFromFile overrides a provider's capabilities from a
// YAML file on disk.
func (r *CapabilityRegistry) LoadCapabilitiesFromFile(id ProviderID, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read capabilities file: %w", err)
	}
	return r.loadYAML(id, raw)
}

// RegisterProviderCapabilities overrides a provider's capabilities
// programmatically.
func (r *CapabilityRegistry) RegisterProviderCapabilities(id ProviderID, caps *ProviderCapabilities) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[id] = caps
}

// ModelCapability returns the capability entry for a model, falling back
// to the provider's defaults entry for unknown models. The second return
// is false when the provider itself is unknown.
func (r *CapabilityRegistry) ModelCapability(id ProviderID, model string) (ModelCapability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	caps, ok := r.capabilities[id]
	if !ok {
		return ModelCapability{}, false
	}
	if mc, ok := caps.Models[model]; ok {
		return mc, true
	}
	return caps.Defaults, true
}

// EffortBudget maps a reasoning effort level to a vendor thinking token
// budget for the given model. Returns 0 when thinking is disabled or
// unsupported.
func (r *CapabilityRegistry) EffortBudget(id ProviderID, model string, effort ReasoningEffort) int {
	if effort == EffortNone {
		return 0
	}
	mc, ok := r.ModelCapability(id, model)
	if !ok || !mc.Thinking.Supported {
		return 0
	}
	return mc.Thinking.EffortToBudget[string(effort)]
}

// MaxOutputTokens returns the default generation cap for a model.
func (r *CapabilityRegistry) MaxOutputTokens(id ProviderID, model string) int {
	mc, ok := r.ModelCapability(id, model)
	if !ok || mc.MaxOutputTokens == 0 {
		return 8192
	}
	return mc.MaxOutputTokens
}
