package oteltrace

import (
	"context"

	"github.com/marchworks/stockroom/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type tracer struct{ t trace.Tracer }

// New returns a Tracer backed by the global otel provider. Without an SDK
// tracer provider installed the spans are no-ops, which is the default for
// local console runs.
func New(name string) observability.Tracer {
	if name == "" {
		name = "stockroom"
	}
	return &tracer{t: otel.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}
