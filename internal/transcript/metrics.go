package transcript

import (
	"github.com/perchlabs/perch/internal/domain/session"
	"github.com/perchlabs/perch/internal/pricing"
)

// Metrics derives per-session counters from a reconstructed transcript.
// Cost is estimated from the model's price table entry; unknown models
// yield a zero estimate.
func Metrics(messages []session.Message, model string) session.Metrics {
	var m session.Metrics
	m.MessageCount = len(messages)

	for _, msg := range messages {
		m.ToolCallCount += len(msg.ToolCalls)
		m.InputTokens += msg.InputTokens
		m.OutputTokens += msg.OutputTokens
	}
	m.TotalTokens = m.InputTokens + m.OutputTokens

	if p, ok := pricing.Lookup(model); ok {
		m.EstCostUSD = float64(m.InputTokens)*pricing.PerToken(p.Input) +
			float64(m.OutputTokens)*pricing.PerToken(p.Output)
	}
	return m
}
