package oteladapters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/oteladapters"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/snaptest"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/strategies"
	"github.com/AntonStoeckl/snapshot-testing-go/testutil/helper"
)

func Test_Asserter_Reports_Through_OpenTelemetry(t *testing.T) {
	// arrange
	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exporter := tracetest.NewInMemoryExporter()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	asserter, err := snaptest.New(
		snaptest.WithSnapshotDir(t.TempDir()),
		snaptest.WithMetrics(oteladapters.NewMetricsCollector(meterProvider.Meter("snapshot"))),
		snaptest.WithTracing(oteladapters.NewTracingCollector(tracerProvider.Tracer("snapshot"))),
		snaptest.WithContextualLogger(oteladapters.NewSlogBridgeLogger("snapshot")),
	)
	require.NoError(t, err)
	tb := helper.NewTBSpy("TestOTel")

	// act
	failure := snaptest.Verify(asserter, tb, "hello", strategies.Text)

	// assert
	require.NotNil(t, failure)
	assert.Equal(t, snaptest.FailureRecorded, failure.Kind)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "snapshot.assert", spans[0].Name)
	assertSpanHasAttribute(t, spans[0], "snapshot.outcome", "recorded")

	metrics := collect(t, reader)
	counter := findCounterMetric(t, metrics, "snapshot_assertions_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(1), counter.DataPoints[0].Value)
}
