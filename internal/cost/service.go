// Package cost assembles the dashboard cost report: token and request
// vectors from the metrics backend, merged per usage tuple, priced through
// the static pricing table, and rolled up for display. Reports are derived
// on demand; a short-lived cache absorbs dashboard refreshes.
package cost

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/perchlabs/perch/internal/adapter/prom"
	costdomain "github.com/perchlabs/perch/internal/domain/cost"
	"github.com/perchlabs/perch/internal/pricing"
)

// Querier is the slice of the metrics client the aggregator needs.
type Querier interface {
	Query(ctx context.Context, q string, ts time.Time) ([]prom.Sample, error)
	QueryRange(ctx context.Context, q string, start, end time.Time, step time.Duration) ([]prom.Series, error)
	Healthy(ctx context.Context) error
}

// Usage vectors exported by the agent runtimes, grouped by the labels the
// report keys on.
const (
	groupBy = `sum by (agent, namespace, provider, model)`

	metricInputTokens  = "llm_input_tokens_total"
	metricOutputTokens = "llm_output_tokens_total"
	metricCacheTokens  = "llm_cache_hit_tokens_total"
	metricRequests     = "llm_requests_total"
	metricReportedCost = "llm_cost_usd_total"
)

const cacheKeyReport = "cost-report"

// Service computes cost reports over a trailing window.
type Service struct {
	prom   Querier
	cache  *Cache
	log    *slog.Logger
	tracer trace.Tracer
	window time.Duration

	// Backend availability is probed once and remembered, so a dead
	// backend costs one failed query per process, not one per render.
	availOnce sync.Once
	availErr  error
}

// NewService creates the aggregator. q may be nil when no metrics backend
// is configured; every report then degrades to unavailable. cache may be
// nil to disable report caching.
func NewService(q Querier, cache *Cache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		prom:   q,
		cache:  cache,
		log:    log,
		tracer: otel.Tracer("perch/cost"),
		window: 24 * time.Hour,
	}
}

// Report returns the cost breakdown for the trailing window. It never
// fails: configuration gaps, an unreachable backend, and query errors all
// yield an unavailable report with a reason, so the dashboard renders an
// empty state instead of an error page.
func (s *Service) Report(ctx context.Context) *costdomain.Report {
	if s.prom == nil {
		return costdomain.Unavailable("metrics backend not configured")
	}

	s.availOnce.Do(func() {
		s.availErr = s.prom.Healthy(ctx)
		if s.availErr != nil {
			s.log.Warn("metrics backend unavailable", "error", s.availErr)
		}
	})
	if s.availErr != nil {
		return costdomain.Unavailable("metrics backend unreachable")
	}

	if s.cache != nil {
		if cached, ok := s.cache.get(cacheKeyReport); ok {
			return cached
		}
	}

	report, err := s.assemble(ctx)
	if err != nil {
		s.log.Warn("cost report degraded", "error", err)
		return costdomain.Unavailable(err.Error())
	}

	if s.cache != nil {
		s.cache.set(cacheKeyReport, report)
	}
	return report
}

// usageKey identifies one merged usage record.
type usageKey struct {
	namespace string
	agent     string
	provider  string
	model     string
}

// usage accumulates the five vectors for one key. Vectors missing a key
// leave that field at zero.
type usage struct {
	inputTokens  float64
	outputTokens float64
	cacheTokens  float64
	requests     float64
	reportedCost float64
}

func (s *Service) assemble(ctx context.Context) (*costdomain.Report, error) {
	ctx, span := s.tracer.Start(ctx, "cost.assemble")
	defer span.End()

	window := fmt.Sprintf("%dh", int(s.window.Hours()))
	instant := func(metric string) string {
		return fmt.Sprintf("%s (increase(%s[%s]))", groupBy, metric, window)
	}

	var (
		mu     sync.Mutex
		merged = map[usageKey]*usage{}
	)

	g, gctx := errgroup.WithContext(ctx)

	merge := func(metric string, assign func(u *usage, v float64)) func() error {
		return func() error {
			samples, err := s.prom.Query(gctx, instant(metric), time.Time{})
			if err != nil {
				return fmt.Errorf("query %s: %w", metric, err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, sm := range samples {
				key := usageKey{
					namespace: sm.Metric["namespace"],
					agent:     sm.Metric["agent"],
					provider:  sm.Metric["provider"],
					model:     sm.Metric["model"],
				}
				u := merged[key]
				if u == nil {
					u = &usage{}
					merged[key] = u
				}
				assign(u, sm.Value)
			}
			return nil
		}
	}

	g.Go(merge(metricInputTokens, func(u *usage, v float64) { u.inputTokens = v }))
	g.Go(merge(metricOutputTokens, func(u *usage, v float64) { u.outputTokens = v }))
	g.Go(merge(metricCacheTokens, func(u *usage, v float64) { u.cacheTokens = v }))
	g.Go(merge(metricRequests, func(u *usage, v float64) { u.requests = v }))
	g.Go(merge(metricReportedCost, func(u *usage, v float64) { u.reportedCost = v }))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The hourly series is fetched after the vector fan-in completes.
	end := time.Now().UTC().Truncate(time.Hour)
	start := end.Add(-s.window)
	q := fmt.Sprintf("sum by (provider) (increase(%s[1h]))", metricReportedCost)
	series, err := s.prom.QueryRange(ctx, q, start, end, time.Hour)
	if err != nil {
		return nil, fmt.Errorf("query hourly cost series: %w", err)
	}

	return buildReport(merged, series), nil
}

// buildReport prices the merged usage and produces every rollup.
func buildReport(merged map[usageKey]*usage, series []prom.Series) *costdomain.Report {
	items := make([]costdomain.AllocationItem, 0, len(merged))
	for key, u := range merged {
		item := costdomain.AllocationItem{
			Agent:          key.agent,
			Namespace:      key.namespace,
			Provider:       key.provider,
			Model:          key.model,
			InputTokens:    u.inputTokens,
			OutputTokens:   u.outputTokens,
			CacheHitTokens: u.cacheTokens,
			Requests:       u.requests,
		}

		if p, ok := pricing.Lookup(key.model); ok {
			item.InputCostUSD = u.inputTokens * pricing.PerToken(p.Input)
			item.OutputCostUSD = u.outputTokens * pricing.PerToken(p.Output)
			if p.CachedInput > 0 {
				item.CacheSavingsUSD = u.cacheTokens * pricing.PerToken(p.Input-p.CachedInput)
			}
			item.TotalCostUSD = item.InputCostUSD + item.OutputCostUSD
		} else {
			// Unknown model: trust the runtime's own cost counter.
			item.TotalCostUSD = u.reportedCost
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].TotalCostUSD != items[j].TotalCostUSD {
			return items[i].TotalCostUSD > items[j].TotalCostUSD
		}
		return items[i].Model < items[j].Model
	})

	report := &costdomain.Report{
		Available:  true,
		Items:      items,
		ByProvider: []costdomain.ProviderCost{},
		ByModel:    []costdomain.ModelCost{},
		Series:     []costdomain.SeriesPoint{},
	}

	var summary costdomain.Summary
	providers := map[string]*costdomain.ProviderCost{}
	models := map[string]*costdomain.ModelCost{}
	for _, item := range items {
		summary.TotalCostUSD += item.TotalCostUSD
		summary.InputCostUSD += item.InputCostUSD
		summary.OutputCostUSD += item.OutputCostUSD
		summary.CacheSavingsUSD += item.CacheSavingsUSD
		summary.InputTokens += item.InputTokens
		summary.OutputTokens += item.OutputTokens
		summary.Requests += item.Requests

		p := providers[item.Provider]
		if p == nil {
			p = &costdomain.ProviderCost{Provider: item.Provider}
			providers[item.Provider] = p
		}
		p.TotalCostUSD += item.TotalCostUSD
		p.Requests += item.Requests

		m := models[item.Model]
		if m == nil {
			m = &costdomain.ModelCost{Model: item.Model, Provider: item.Provider}
			models[item.Model] = m
		}
		m.InputTokens += item.InputTokens
		m.OutputTokens += item.OutputTokens
		m.TotalCostUSD += item.TotalCostUSD
	}
	if summary.TotalCostUSD > 0 {
		summary.InputCostPct = summary.InputCostUSD / summary.TotalCostUSD * 100
		summary.OutputCostPct = summary.OutputCostUSD / summary.TotalCostUSD * 100
	}
	report.Summary = summary

	for _, p := range providers {
		report.ByProvider = append(report.ByProvider, *p)
	}
	sort.Slice(report.ByProvider, func(i, j int) bool {
		if report.ByProvider[i].TotalCostUSD != report.ByProvider[j].TotalCostUSD {
			return report.ByProvider[i].TotalCostUSD > report.ByProvider[j].TotalCostUSD
		}
		return report.ByProvider[i].Provider < report.ByProvider[j].Provider
	})

	for _, m := range models {
		report.ByModel = append(report.ByModel, *m)
	}
	sort.Slice(report.ByModel, func(i, j int) bool {
		if report.ByModel[i].TotalCostUSD != report.ByModel[j].TotalCostUSD {
			return report.ByModel[i].TotalCostUSD > report.ByModel[j].TotalCostUSD
		}
		return report.ByModel[i].Model < report.ByModel[j].Model
	})

	for _, point := range prom.Align(series, "provider") {
		report.Series = append(report.Series, costdomain.SeriesPoint{
			Timestamp:  point.Timestamp,
			ByProvider: point.Values,
		})
	}

	return report
}
