// Package pricing holds the static model price table used to derive cost
// estimates from raw token counts. Prices are USD per million tokens.
package pricing

import "strings"

// ModelPricing holds per-million-token prices for one model. CachedInput
// is the discounted price for cache-hit input tokens; zero means the model
// has no cache pricing and cache savings are not computed for it.
type ModelPricing struct {
	Input       float64
	Output      float64
	CachedInput float64
}

// table maps model identifier prefixes to prices. Lookup is exact first,
// then substring, so dated or suffixed variants resolve to their base
// entry.
var table = map[string]ModelPricing{
	"gpt-4o":            {Input: 2.50, Output: 10.00, CachedInput: 1.25},
	"gpt-4o-mini":       {Input: 0.15, Output: 0.60, CachedInput: 0.075},
	"gpt-4.1":           {Input: 2.00, Output: 8.00, CachedInput: 0.50},
	"o3":                {Input: 2.00, Output: 8.00, CachedInput: 0.50},
	"claude-opus-4":     {Input: 15.00, Output: 75.00, CachedInput: 1.50},
	"claude-sonnet-4":   {Input: 3.00, Output: 15.00, CachedInput: 0.30},
	"claude-haiku-3.5":  {Input: 0.80, Output: 4.00, CachedInput: 0.08},
	"gemini-2.5-pro":    {Input: 1.25, Output: 10.00, CachedInput: 0.31},
	"gemini-2.5-flash":  {Input: 0.30, Output: 2.50, CachedInput: 0.075},
	"mistral-large":     {Input: 2.00, Output: 6.00},
	"llama-3.3-70b":     {Input: 0.60, Output: 0.60},
	"deepseek-chat":     {Input: 0.27, Output: 1.10, CachedInput: 0.07},
	"deepseek-reasoner": {Input: 0.55, Output: 2.19, CachedInput: 0.14},
}

// Lookup resolves a model identifier to its pricing: an exact table hit
// first, otherwise the longest table key contained in the identifier.
// Returns ok=false for unknown models.
func Lookup(model string) (ModelPricing, bool) {
	if p, ok := table[model]; ok {
		return p, true
	}

	var (
		best    ModelPricing
		bestLen int
		found   bool
	)
	for key, p := range table {
		if strings.Contains(model, key) && len(key) > bestLen {
			best = p
			bestLen = len(key)
			found = true
		}
	}
	return best, found
}

// PerToken converts a per-million price to a per-token price.
func PerToken(perMillion float64) float64 {
	return perMillion / 1_000_000
}
