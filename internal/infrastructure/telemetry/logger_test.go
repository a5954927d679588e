package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, parseLevel("INFO"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelDebug, parseLevel(""))
}

func TestLoggerInjectsTraceAndRoute(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&config.OTLPConfig{ServiceName: "svc", Environment: "test", LogLevel: "info"}, &buf)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	ctx = WithHTTPRoute(ctx, "/sales/reload")

	logger.DebugContext(ctx, "dropped")
	logger.InfoContext(ctx, "kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "svc", entry["service.name"])
	assert.Equal(t, "/sales/reload", entry["http.route"])
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
}
