package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docworker/internal/port"
)

// Tracer returns the worker's tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

type observableExtractor struct {
	extractor port.TextExtractor
}

// NewExtractor wraps p so every extraction runs in a span.
func NewExtractor(p port.TextExtractor) port.TextExtractor {
	return &observableExtractor{extractor: p}
}

func (o *observableExtractor) Extract(ctx context.Context, input port.ExtractInput) (string, error) {
	ctx, span := Tracer().Start(ctx, "extract",
		trace.WithAttributes(
			attribute.String("document.filename", input.Filename),
			attribute.String("document.content_type", input.ContentType),
			attribute.Int("document.size", len(input.Content)),
		))
	defer span.End()

	text, err := o.extractor.Extract(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("text.length", len(text)))
	return text, nil
}

type observableSummarizer struct {
	summarizer port.Summarizer
}

// NewSummarizer wraps p so every summarization runs in a span.
func NewSummarizer(p port.Summarizer) port.Summarizer {
	return &observableSummarizer{summarizer: p}
}

func (o *observableSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	ctx, span := Tracer().Start(ctx, "summarize",
		trace.WithAttributes(attribute.Int("text.length", len(text))))
	defer span.End()

	summary, err := o.summarizer.Summarize(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return summary, nil
}
