package infrastructure

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func newTestOTel(t *testing.T) *OTelProviders {
	t.Helper()

	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "none"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	providers, err := InitializeOTel(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(ctx)
	})
	return providers
}

// TestOTelInitialization tests OpenTelemetry initialization
func TestOTelInitialization(t *testing.T) {
	providers := newTestOTel(t)

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)
}

func TestOTelConfiguration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := InitializeOTel(&OTelConfig{EnableTracing: true, TraceExporter: "otlp"}, logger)
	assert.Error(t, err)

	_, err = InitializeOTel(&OTelConfig{EnableMetrics: true, MetricExporter: "statsd"}, logger)
	assert.Error(t, err)

	providers, err := InitializeOTel(&OTelConfig{}, logger)
	require.NoError(t, err)
	assert.Nil(t, providers.Meter)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

// TestBusinessMetrics tests business metrics creation and recording
func TestBusinessMetrics(t *testing.T) {
	providers := newTestOTel(t)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	ctx := context.Background()
	metrics.RecordNormalize(ctx, "Source", 120*time.Millisecond, 42, 1)
	metrics.RecordCacheLookup(ctx, "Source", true)
	metrics.RecordCacheLookup(ctx, "Source", false)
	metrics.RecordChart(ctx, "global")
	metrics.RecordMerge(ctx, true)
	metrics.RecordSourceChange(ctx)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "normalized_rows_total")
	assert.Contains(t, string(body), "charts_rendered_total")
}

func TestNilBusinessMetrics(t *testing.T) {
	var metrics *BusinessMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		metrics.RecordNormalize(ctx, "Source", time.Second, 1, 1)
		metrics.RecordCacheLookup(ctx, "Source", true)
		metrics.RecordChart(ctx, "global")
		metrics.RecordMerge(ctx, false)
		metrics.RecordSourceChange(ctx)
	})
}

// TestTraceCorrelation tests trace ID extraction from spans
func TestTraceCorrelation(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))

	cfg := DefaultOTelConfig()
	cfg.EnableMetrics = false
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	providers, err := InitializeOTel(cfg, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := otel.Tracer("test").Start(context.Background(), "test-operation")
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), TraceIDFromContext(ctx))

	var buf bytes.Buffer
	NewJSONLogger(&buf, "info").InfoContext(ctx, "inside span")
	assert.Contains(t, buf.String(), `"trace_id":"`+span.SpanContext().TraceID().String()+`"`)
	RecordError(ctx, assert.AnError)
	assert.True(t, span.IsRecording())
}
