// Package cost defines domain types for cost and token aggregation derived
// from metrics-backend vectors. Nothing here is persisted; reports are
// recomputed on every query.
package cost

import "time"

// AllocationItem is the merged usage record for one
// (namespace, agent, provider, model) tuple over the query window.
type AllocationItem struct {
	Agent           string  `json:"agent"`
	Namespace       string  `json:"namespace"`
	Provider        string  `json:"provider"`
	Model           string  `json:"model"`
	InputTokens     float64 `json:"input_tokens"`
	OutputTokens    float64 `json:"output_tokens"`
	CacheHitTokens  float64 `json:"cache_hit_tokens"`
	Requests        float64 `json:"requests"`
	InputCostUSD    float64 `json:"input_cost_usd"`
	OutputCostUSD   float64 `json:"output_cost_usd"`
	CacheSavingsUSD float64 `json:"cache_savings_usd"`
	TotalCostUSD    float64 `json:"total_cost_usd"`
}

// Summary holds grand totals across all allocation items.
type Summary struct {
	TotalCostUSD    float64 `json:"total_cost_usd"`
	InputCostUSD    float64 `json:"input_cost_usd"`
	OutputCostUSD   float64 `json:"output_cost_usd"`
	CacheSavingsUSD float64 `json:"cache_savings_usd"`
	InputTokens     float64 `json:"input_tokens"`
	OutputTokens    float64 `json:"output_tokens"`
	Requests        float64 `json:"requests"`
	InputCostPct    float64 `json:"input_cost_pct"`
	OutputCostPct   float64 `json:"output_cost_pct"`
}

// ProviderCost rolls up cost by provider.
type ProviderCost struct {
	Provider     string  `json:"provider"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	Requests     float64 `json:"requests"`
}

// ModelCost rolls up cost by model.
type ModelCost struct {
	Model        string  `json:"model"`
	Provider     string  `json:"provider"`
	InputTokens  float64 `json:"input_tokens"`
	OutputTokens float64 `json:"output_tokens"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

// SeriesPoint is one timestamp in the hourly cost series, with the cost
// delta for each provider at that instant.
type SeriesPoint struct {
	Timestamp  time.Time          `json:"timestamp"`
	ByProvider map[string]float64 `json:"by_provider"`
}

// Report is the full cost breakdown returned to the dashboard. When the
// metrics backend is unreachable, Available is false, Reason explains why,
// and every collection is empty rather than nil.
type Report struct {
	Available  bool             `json:"available"`
	Reason     string           `json:"reason,omitempty"`
	Summary    Summary          `json:"summary"`
	Items      []AllocationItem `json:"items"`
	ByProvider []ProviderCost   `json:"by_provider"`
	ByModel    []ModelCost      `json:"by_model"`
	Series     []SeriesPoint    `json:"series"`
}

// Unavailable returns a degraded empty report carrying the given reason.
func Unavailable(reason string) *Report {
	return &Report{
		Available:  false,
		Reason:     reason,
		Items:      []AllocationItem{},
		ByProvider: []ProviderCost{},
		ByModel:    []ModelCost{},
		Series:     []SeriesPoint{},
	}
}
