package logging

import (
	"context"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// String returns string representation of log level
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a LogLevel, defaulting to InfoLevel
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Fields represents structured log fields
type Fields map[string]interface{}

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID returns a context carrying the request ID picked up by the logger
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request ID stored in ctx, if any
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// StructuredLogger provides structured logging with service metadata and
// request context on every entry
type StructuredLogger struct {
	zl *zap.Logger
}

// NewStructuredLoggerWithFormat creates a logger using the "json" or "console" encoder
func NewStructuredLoggerWithFormat(service, version string, level LogLevel, format string) *StructuredLogger {
	atom := zap.NewAtomicLevelAt(level.zapLevel())

	var encCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	if format == "console" {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "timestamp"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), atom)

	hostname, _ := os.Hostname()
	zl := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(2),
		zap.AddStacktrace(zapcore.FatalLevel),
	).With(
		zap.String("service", service),
		zap.String("version", version),
		zap.String("hostname", hostname),
	)

	return &StructuredLogger{zl: zl}
}

// NewFromZap wraps an existing zap logger
func NewFromZap(zl *zap.Logger) *StructuredLogger {
	return &StructuredLogger{zl: zl.WithOptions(zap.AddCallerSkip(2))}
}

// NewTestLogger creates a logger that writes through testing.TB
func NewTestLogger(t testing.TB) *StructuredLogger {
	return NewFromZap(zaptest.NewLogger(t))
}

// Sync flushes buffered entries
func (l *StructuredLogger) Sync() error {
	return l.zl.Sync()
}

// Debug logs a debug message with structured fields
func (l *StructuredLogger) Debug(ctx context.Context, message string, fields Fields) {
	l.log(ctx, DebugLevel, message, fields, nil)
}

// Info logs an info message with structured fields
func (l *StructuredLogger) Info(ctx context.Context, message string, fields Fields) {
	l.log(ctx, InfoLevel, message, fields, nil)
}

// Warn logs a warning message with structured fields
func (l *StructuredLogger) Warn(ctx context.Context, message string, fields Fields) {
	l.log(ctx, WarnLevel, message, fields, nil)
}

// Error logs an error message with structured fields and error details
func (l *StructuredLogger) Error(ctx context.Context, message string, fields Fields, err error) {
	l.log(ctx, ErrorLevel, message, fields, err)
}

// Fatal logs a fatal message and exits the program
func (l *StructuredLogger) Fatal(ctx context.Context, message string, fields Fields, err error) {
	l.log(ctx, FatalLevel, message, fields, err)
	_ = l.zl.Sync()
	os.Exit(1)
}

func (l *StructuredLogger) log(ctx context.Context, level LogLevel, message string, fields Fields, err error) {
	zlevel := level.zapLevel()
	if level == FatalLevel {
		// zap's Fatal exits on its own; Fatal above owns the exit
		zlevel = zapcore.ErrorLevel
	}

	ce := l.zl.Check(zlevel, message)
	if ce == nil {
		return
	}

	zfields := make([]zap.Field, 0, len(fields)+2)
	if len(fields) > 0 {
		zfields = append(zfields, zap.Any("fields", map[string]interface{}(fields)))
	}
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		zfields = append(zfields, zap.String("request_id", requestID))
	}
	if err != nil {
		zfields = append(zfields, zap.Error(err))
	}
	if level == FatalLevel {
		zfields = append(zfields, zap.String("severity", FatalLevel.String()), zap.Stack("stack_trace"))
	}

	ce.Write(zfields...)
}
