package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome labels for documents and cycles.
const (
	OutcomeCompleted = "completed"
	OutcomeError     = "error"
	OutcomeSkipped   = "skipped"
)

// Metrics are the worker's instruments.
type Metrics struct {
	documents        metric.Int64Counter
	documentDuration metric.Float64Histogram
	cycles           metric.Int64Counter
	cycleDuration    metric.Float64Histogram
	requeued         metric.Int64Counter
}

// NewMetrics creates the worker's instruments on mp. A nil mp uses the global provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	documents, err := meter.Int64Counter("docworker.documents",
		metric.WithDescription("Documents that reached a terminal status"),
		metric.WithUnit("{document}"))
	if err != nil {
		return nil, err
	}

	documentDuration, err := meter.Float64Histogram("docworker.document.duration",
		metric.WithDescription("Time spent processing one document"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	cycles, err := meter.Int64Counter("docworker.cycles",
		metric.WithDescription("Polling cycles run"),
		metric.WithUnit("{cycle}"))
	if err != nil {
		return nil, err
	}

	cycleDuration, err := meter.Float64Histogram("docworker.cycle.duration",
		metric.WithDescription("Time spent on one polling cycle"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	requeued, err := meter.Int64Counter("docworker.documents.requeued",
		metric.WithDescription("Stale processing documents returned to pending"),
		metric.WithUnit("{document}"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		documents:        documents,
		documentDuration: documentDuration,
		cycles:           cycles,
		cycleDuration:    cycleDuration,
		requeued:         requeued,
	}, nil
}

// RecordDocument counts one processed document and its duration.
func (m *Metrics) RecordDocument(ctx context.Context, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.documents.Add(ctx, 1, attrs)
	m.documentDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordCycle counts one polling cycle and its duration.
func (m *Metrics) RecordCycle(ctx context.Context, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.cycles.Add(ctx, 1, attrs)
	m.cycleDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordRequeued counts stale documents returned to pending.
func (m *Metrics) RecordRequeued(ctx context.Context, n int64) {
	if n > 0 {
		m.requeued.Add(ctx, n)
	}
}
