package oteladapters_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"

	"github.com/vodfgo/vodf/vodf/oteladapters"
)

type recordingLogger struct {
	embedded.Logger

	mu      sync.Mutex
	records []log.Record
}

func (l *recordingLogger) Emit(_ context.Context, record log.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, record.Clone())
}

func (l *recordingLogger) Enabled(context.Context, log.EnabledParameters) bool {
	return true
}

func attributes(record log.Record) map[string]log.Value {
	attrs := make(map[string]log.Value)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})

	return attrs
}

func Test_SlogBridgeLoggerWithHandler_AllLevels(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)
	ctx := context.Background()

	logger.DebugContext(ctx, "bundle skipped, category not requested", "bundle_index", 1)
	logger.InfoContext(ctx, "split completed", "obs_id", int64(23523))
	logger.WarnContext(ctx, "failed to close database rows")
	logger.ErrorContext(ctx, "split failed", "error", "band half width must be positive")

	output := buf.String()

	assert.Contains(t, output, `"level":"DEBUG"`)
	assert.Contains(t, output, `"level":"INFO"`)
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"level":"ERROR"`)
	assert.Contains(t, output, `"obs_id":23523`)
	assert.Contains(t, output, `"bundle_index":1`)
}

func Test_SlogBridgeLogger_UsesGlobalProvider(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("vodf-test")
	ctx := context.Background()

	assert.NotPanics(t, func() {
		logger.DebugContext(ctx, "debug", "key", "value")
		logger.InfoContext(ctx, "info", "key", "value")
		logger.WarnContext(ctx, "warn", "key", "value")
		logger.ErrorContext(ctx, "error", "key", "value")
	})
}

func Test_OTelLogger_EmitsTypedAttributes(t *testing.T) {
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	logger.InfoContext(context.Background(), "split completed",
		"obs_id", int64(23523),
		"observations", 2,
		"duration_ms", 0.25,
		"point_like", true,
		"error", errors.New("boom"),
		"category", "1",
		"dangling",
	)

	require.Len(t, recorder.records, 1)
	record := recorder.records[0]

	assert.Equal(t, "split completed", record.Body().AsString())
	assert.Equal(t, log.SeverityInfo, record.Severity())

	attrs := attributes(record)
	require.Len(t, attrs, 6)
	assert.Equal(t, int64(23523), attrs["obs_id"].AsInt64())
	assert.Equal(t, int64(2), attrs["observations"].AsInt64())
	assert.InDelta(t, 0.25, attrs["duration_ms"].AsFloat64(), 1e-9)
	assert.True(t, attrs["point_like"].AsBool())
	assert.Equal(t, "boom", attrs["error"].AsString())
	assert.Equal(t, "1", attrs["category"].AsString())
}

func Test_OTelLogger_Severities(t *testing.T) {
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)
	ctx := context.Background()

	logger.DebugContext(ctx, "d")
	logger.InfoContext(ctx, "i")
	logger.WarnContext(ctx, "w")
	logger.ErrorContext(ctx, "e")

	require.Len(t, recorder.records, 4)
	assert.Equal(t, log.SeverityDebug, recorder.records[0].Severity())
	assert.Equal(t, log.SeverityInfo, recorder.records[1].Severity())
	assert.Equal(t, log.SeverityWarn, recorder.records[2].Severity())
	assert.Equal(t, log.SeverityError, recorder.records[3].Severity())
}
