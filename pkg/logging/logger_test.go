package logging

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level) (*StructuredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewFromZap(zap.New(core)), logs
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"fatal", FatalLevel},
		{"", InfoLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "INFO", InfoLevel.String())
	assert.Equal(t, "FATAL", FatalLevel.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestStructuredLogger_FieldsAndRequestID(t *testing.T) {
	logger, logs := newObservedLogger(zapcore.DebugLevel)

	ctx := WithRequestID(context.Background(), "req-123")
	logger.Info(ctx, "[TEST] hello", Fields{"route": "Jakarta-Padang"})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "[TEST] hello", entries[0].Message)

	ctxMap := entries[0].ContextMap()
	assert.Equal(t, "req-123", ctxMap["request_id"])
	fields, ok := ctxMap["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Jakarta-Padang", fields["route"])
}

func TestStructuredLogger_ErrorCarriesError(t *testing.T) {
	logger, logs := newObservedLogger(zapcore.DebugLevel)

	logger.Error(context.Background(), "[TEST_ERROR] failed", Fields{}, errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	logger, logs := newObservedLogger(zapcore.InfoLevel)

	logger.Debug(context.Background(), "hidden", nil)
	logger.Warn(context.Background(), "shown", nil)

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "shown", logs.All()[0].Message)
}

func TestStructuredLogger_ReportsCallerSite(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewFromZap(zap.New(core, zap.AddCaller()))

	logger.Info(context.Background(), "info", nil)
	logger.Error(context.Background(), "error", nil, errors.New("boom"))

	require.Len(t, logs.All(), 2)
	for _, entry := range logs.All() {
		require.True(t, entry.Caller.Defined)
		assert.True(t, strings.HasSuffix(entry.Caller.File, "logger_test.go"), entry.Caller.File)
	}
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
