package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/oteladapters"
)

func Test_TracingCollector_Records_Span_With_Attributes(t *testing.T) {
	// arrange
	exporter, collector := givenTracingCollector()

	// act
	ctx, spanCtx := collector.StartSpan(context.Background(), "snapshot.assert", map[string]string{
		"snapshot.test_scope": "TestGreeting",
		"snapshot.strategy":   "text",
	})
	spanCtx.AddAttribute("snapshot.location", "greeting_test/TestGreeting.1.text.txt")
	collector.FinishSpan(spanCtx, "success", map[string]string{"snapshot.outcome": "match"})

	// assert
	assert.NotNil(t, ctx)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "snapshot.assert", span.Name)
	assert.Equal(t, codes.Ok, span.Status.Code)
	assertSpanHasAttribute(t, span, "snapshot.test_scope", "TestGreeting")
	assertSpanHasAttribute(t, span, "snapshot.strategy", "text")
	assertSpanHasAttribute(t, span, "snapshot.location", "greeting_test/TestGreeting.1.text.txt")
	assertSpanHasAttribute(t, span, "snapshot.outcome", "match")
}

func Test_TracingCollector_Maps_Statuses(t *testing.T) {
	testCases := []struct {
		status       string
		expectedCode codes.Code
	}{
		{status: "success", expectedCode: codes.Ok},
		{status: "error", expectedCode: codes.Error},
		{status: "timeout", expectedCode: codes.Error},
		{status: "whatever", expectedCode: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// arrange
			exporter, collector := givenTracingCollector()

			// act
			_, spanCtx := collector.StartSpan(context.Background(), "snapshot.assert", nil)
			collector.FinishSpan(spanCtx, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expectedCode, spans[0].Status.Code)
		})
	}
}

func Test_TracingCollector_Nests_Spans_Through_Context(t *testing.T) {
	// arrange
	exporter, collector := givenTracingCollector()

	// act
	ctx, parent := collector.StartSpan(context.Background(), "parent", nil)
	_, child := collector.StartSpan(ctx, "child", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "child", spans[0].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func Test_TracingCollector_Ignores_Foreign_Span_Context(t *testing.T) {
	// arrange
	exporter, collector := givenTracingCollector()

	// act
	collector.FinishSpan(nil, "success", nil)

	// assert
	assert.Empty(t, exporter.GetSpans())
}

func givenTracingCollector() (*tracetest.InMemoryExporter, *oteladapters.TracingCollector) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return exporter, oteladapters.NewTracingCollector(provider.Tracer("test"))
}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expectedValue string) {
	t.Helper()
	found := false
	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) && attr.Value.AsString() == expectedValue {
			found = true
			break
		}
	}
	assert.True(t, found, "Span should have attribute %s=%s", key, expectedValue)
}
