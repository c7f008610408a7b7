package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1insights/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "nested", "f1.log")
	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.FileExists(t, logFile)

	logger.Info("dataset loaded", "dataset", "results")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(content, &entry), "log output must be JSON")
	assert.Equal(t, "dataset loaded", entry["msg"])
	assert.Equal(t, "results", entry["dataset"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInitializeLoggerOnlyOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, GetLogger())
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&traceHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.InfoContext(ctx, "computing view")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "trace-123", entry["trace_id"])

	buf.Reset()
	logger.InfoContext(context.Background(), "no trace")
	assert.NotContains(t, buf.String(), "trace_id")
}

func TestTraceHandlerKeepsWrappingThroughWith(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&traceHandler{Handler: slog.NewJSONHandler(&buf, nil)}).
		With("component", "analytics").
		WithGroup("view")

	logger.InfoContext(WithTraceID(context.Background(), "abc"), "built", "action", "champion-age")

	out := buf.String()
	assert.Contains(t, out, `"component":"analytics"`)
	assert.Contains(t, out, `"trace_id":"abc"`)
}

func TestGetTraceID(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{name: "empty context", ctx: context.Background(), want: ""},
		{name: "trace id key", ctx: WithTraceID(context.Background(), "t-1"), want: "t-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetTraceID(tt.ctx))
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestLoggerFromContext(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	assert.Same(t, GetLogger(), LoggerFromContext(context.Background()))

	var buf bytes.Buffer
	attached := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := WithTraceID(WithLogger(context.Background(), attached), "t-9")
	LoggerFromContext(ctx).InfoContext(ctx, "loaded")
	assert.Contains(t, buf.String(), `"trace_id":"t-9"`)

	buf.Reset()
	traced := slog.New(&traceHandler{Handler: slog.NewJSONHandler(&buf, nil)})
	ctx = WithTraceID(WithLogger(context.Background(), traced), "t-10")
	LoggerFromContext(ctx).InfoContext(ctx, "loaded")
	assert.Equal(t, 1, strings.Count(buf.String(), "trace_id"))
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	again := EnsureTraceID(ctx)
	assert.Equal(t, id, GetTraceID(again))
}

func TestNewCLILoggerLevel(t *testing.T) {
	logger := NewCLILogger("warn")
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestLogOutputBoth(t *testing.T) {
	defer CloseLogFile()

	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "both.log")
	w, err := logOutput(config.LoggingConfig{Output: "both", FilePath: logFile}, &console)
	require.NoError(t, err)

	_, err = w.Write([]byte("line\n"))
	require.NoError(t, err)
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(content))
	assert.Equal(t, "line\n", console.String())
}
