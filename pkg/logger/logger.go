// Package logger provides structured logging with context support.
//
// The Logger interface is backed by zerolog:
// - JSON output for production, console output for local development
// - Log levels (Debug, Info, Warn, Error, Fatal)
// - Context propagation (request ID, user ID)
// - Field-based logging
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Level represents the severity of a log entry.
type Level int32

const (
	// DebugLevel for debug messages.
	DebugLevel Level = iota
	// InfoLevel for informational messages.
	InfoLevel
	// WarnLevel for warning messages.
	WarnLevel
	// ErrorLevel for error messages.
	ErrorLevel
	// FatalLevel for fatal messages (calls os.Exit(1)).
	FatalLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
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

// ParseLevel converts a config string ("debug", "info", ...) into a Level.
// Unknown values fall back to InfoLevel.
func ParseLevel(s string) Level {
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

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case FatalLevel:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// Logger is the main logger interface.
type Logger interface {
	// Level management
	SetLevel(level Level)
	GetLevel() Level

	// Basic logging
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// Context logging
	WithContext(ctx context.Context) Logger
	WithFields(fields ...Field) Logger
}

// Config holds logger configuration.
type Config struct {
	Level  Level
	Format string // json or console
	Output io.Writer
	Caller bool // Include caller information
}

// DefaultConfig returns default logger configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:  InfoLevel,
		Format: "json",
		Output: os.Stdout,
	}
}

// ZeroLogger is the zerolog backed Logger implementation.
type ZeroLogger struct {
	zl     zerolog.Logger
	level  *atomic.Int32
	output io.Writer
}

// New creates a new logger with the given configuration.
func New(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	w := out
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zctx := zerolog.New(w).With().Timestamp()
	if cfg.Caller {
		zctx = zctx.CallerWithSkipFrameCount(3)
	}

	level := &atomic.Int32{}
	level.Store(int32(cfg.Level))

	return &ZeroLogger{
		zl:     zctx.Logger(),
		level:  level,
		output: out,
	}
}

// Default returns a logger with default configuration.
func Default() Logger {
	return New(DefaultConfig())
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() Logger {
	return New(&Config{Level: FatalLevel + 1, Output: io.Discard})
}

// SetLevel sets the minimum log level.
func (l *ZeroLogger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

// GetLevel returns the current log level.
func (l *ZeroLogger) GetLevel() Level {
	return Level(l.level.Load())
}

// Debug logs a debug message.
func (l *ZeroLogger) Debug(msg string, fields ...Field) {
	l.log(DebugLevel, msg, fields)
}

// Info logs an info message.
func (l *ZeroLogger) Info(msg string, fields ...Field) {
	l.log(InfoLevel, msg, fields)
}

// Warn logs a warning message.
func (l *ZeroLogger) Warn(msg string, fields ...Field) {
	l.log(WarnLevel, msg, fields)
}

// Error logs an error message.
func (l *ZeroLogger) Error(msg string, fields ...Field) {
	l.log(ErrorLevel, msg, fields)
}

// Fatal logs a fatal message and exits.
func (l *ZeroLogger) Fatal(msg string, fields ...Field) {
	l.log(FatalLevel, msg, fields)
	os.Exit(1)
}

// WithContext returns a logger with context fields.
func (l *ZeroLogger) WithContext(ctx context.Context) Logger {
	return l.WithFields(extractContextFields(ctx)...)
}

// WithFields returns a logger with additional fields.
// The child shares the parent's level.
func (l *ZeroLogger) WithFields(fields ...Field) Logger {
	zctx := l.zl.With()
	for _, f := range fields {
		zctx = zctx.Interface(f.Key, f.Value)
	}
	return &ZeroLogger{
		zl:     zctx.Logger(),
		level:  l.level,
		output: l.output,
	}
}

func (l *ZeroLogger) log(level Level, msg string, fields []Field) {
	if level < l.GetLevel() {
		return
	}

	// Fatal is routed through WithLevel so zerolog does not exit before we do.
	ev := l.zl.WithLevel(level.zerolog())
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			ev = ev.Str(f.Key, v)
		case int:
			ev = ev.Int(f.Key, v)
		case int64:
			ev = ev.Int64(f.Key, v)
		case float64:
			ev = ev.Float64(f.Key, v)
		case bool:
			ev = ev.Bool(f.Key, v)
		case nil:
			ev = ev.Interface(f.Key, nil)
		default:
			ev = ev.Interface(f.Key, v)
		}
	}
	ev.Msg(msg)
}

// Context keys for logger fields.
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

func extractContextFields(ctx context.Context) []Field {
	if ctx == nil {
		return nil
	}
	var fields []Field

	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		fields = append(fields, Field{Key: "request_id", Value: requestID})
	}

	if userID, ok := ctx.Value(userIDKey).(string); ok && userID != "" {
		fields = append(fields, Field{Key: "user_id", Value: userID})
	}

	return fields
}

// WithRequestID adds request ID to context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithUserID adds user ID to context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Helper functions for creating fields

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Error creates an error field.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any creates a field with any value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

var global Logger = Default()

// SetGlobalLogger sets the global logger instance.
func SetGlobalLogger(l Logger) {
	global = l
}

// Fatal logs a fatal message using the global logger.
func Fatal(msg string, fields ...Field) {
	global.Fatal(msg, fields...)
}
