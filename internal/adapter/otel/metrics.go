package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "perch"

// Metrics holds all Perch metric instruments.
type Metrics struct {
	ResourceRequests  metric.Int64Counter
	AgentConnections  metric.Int64UpDownCounter
	CostQueries       metric.Int64Counter
	CostQueryDuration metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.ResourceRequests, err = meter.Int64Counter("perch.resource.requests",
		metric.WithDescription("Number of resource API requests served"))
	if err != nil {
		return nil, err
	}

	m.AgentConnections, err = meter.Int64UpDownCounter("perch.agent.connections",
		metric.WithDescription("Open realtime agent connections"))
	if err != nil {
		return nil, err
	}

	m.CostQueries, err = meter.Int64Counter("perch.cost.queries",
		metric.WithDescription("Number of cost report computations"))
	if err != nil {
		return nil, err
	}

	m.CostQueryDuration, err = meter.Float64Histogram("perch.cost.query_duration_seconds",
		metric.WithDescription("Cost report computation duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
