package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"docworker/internal/config"
	"docworker/internal/port"
	"docworker/internal/telemetry"
	"docworker/mocks"
)

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), &config.TelemetryConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestMetrics_RecordDocument(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := telemetry.NewMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordDocument(ctx, telemetry.OutcomeCompleted, 2*time.Second)
	m.RecordDocument(ctx, telemetry.OutcomeError, time.Second)
	m.RecordDocument(ctx, telemetry.OutcomeCompleted, time.Second)
	m.RecordRequeued(ctx, 0)
	m.RecordRequeued(ctx, 3)
	m.RecordCycle(ctx, telemetry.OutcomeCompleted, 500*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		byName[md.Name] = md
	}

	processed, ok := byName["docworker.documents"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	counts := map[string]int64{}
	for _, dp := range processed.DataPoints {
		outcome, _ := dp.Attributes.Value("outcome")
		counts[outcome.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"completed": 2, "error": 1}, counts)

	requeued, ok := byName["docworker.documents.requeued"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, requeued.DataPoints, 1)
	assert.Equal(t, int64(3), requeued.DataPoints[0].Value)

	_, ok = byName["docworker.document.duration"].Data.(metricdata.Histogram[float64])
	assert.True(t, ok)

	cycles, ok := byName["docworker.cycles"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, cycles.DataPoints, 1)
	assert.Equal(t, int64(1), cycles.DataPoints[0].Value)
}

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func TestNewExtractor_RecordsSpan(t *testing.T) {
	recorder := installRecorder(t)

	inner := new(mocks.MockTextExtractor)
	input := port.ExtractInput{Filename: "a.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}
	inner.On("Extract", mock.Anything, input).Return("text", nil)

	text, err := telemetry.NewExtractor(inner).Extract(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "text", text)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "extract", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestNewSummarizer_RecordsError(t *testing.T) {
	recorder := installRecorder(t)

	boom := errors.New("boom")
	inner := new(mocks.MockSummarizer)
	inner.On("Summarize", mock.Anything, "text").Return("", boom)

	_, err := telemetry.NewSummarizer(inner).Summarize(context.Background(), "text")
	require.ErrorIs(t, err, boom)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "summarize", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
