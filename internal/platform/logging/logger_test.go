package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, sonic.UnmarshalString(line, &entry))
		out = append(out, entry)
	}
	return out
}

func TestLogger_KeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(LevelInfo, &buf).With("source", "thesportsdb")

	logger.Debug("hidden")
	logger.Warn("fragment dropped", "reason", "missing teams", "error", errors.New("boom"), "dangling")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	require.Equal(t, "WARN", entries[0]["level"])
	require.Equal(t, "fragment dropped", entries[0]["msg"])
	require.Equal(t, "thesportsdb", entries[0]["source"])
	require.Equal(t, "missing teams", entries[0]["reason"])
	require.Equal(t, "boom", entries[0]["error"])
	require.Contains(t, entries[0], "dangling")
	require.Contains(t, entries[0]["caller"], "logger_test.go")
}

func TestLogger_TraceFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(LevelDebug, &buf)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "schedule published", "matches", 3)
	logger.InfoContext(context.Background(), "no span")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	require.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entries[0]["trace_id"])
	require.Equal(t, "00f067aa0ba902b7", entries[0]["span_id"])
	require.EqualValues(t, 3, entries[0]["matches"])
	require.NotContains(t, entries[1], "trace_id")
}

func TestDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewJSONWriter(LevelInfo, &buf))
	t.Cleanup(func() { SetDefault(nil) })

	var nilLogger *Logger
	nilLogger.Info("via default")
	require.Len(t, decodeLines(t, &buf), 1)

	SetDefault(nil)
	require.NotNil(t, Default())
	require.NoError(t, Default().Sync())
}
