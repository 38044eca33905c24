package tracing_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/tracing"
)

func TestPropagationRoundTrip(t *testing.T) {
	require.NoError(t, tracing.InitTracer(context.Background(), configs.TracingConfig{}))

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithRemoteSpanContext(context.Background(), sc)

	h := http.Header{}
	tracing.Inject(ctx, h)
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", h.Get("traceparent"))

	got := trace.SpanContextFromContext(tracing.Extract(context.Background(), h))
	assert.Equal(t, traceID, got.TraceID())
	assert.True(t, got.IsRemote())
}

func TestInitTracerRejectsUnknownExporter(t *testing.T) {
	err := tracing.InitTracer(context.Background(), configs.TracingConfig{Enabled: true, ExporterType: "jaeger"})
	assert.ErrorContains(t, err, "unsupported exporter type")
}

func TestFailNil(t *testing.T) {
	_, span := tracing.StartSpan(context.Background(), "noop")
	defer span.End()

	tracing.Fail(span, nil)
}
