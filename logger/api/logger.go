package api

import (
	"context"
	"fmt"
)

// Logger is the logging contract used throughout the service. Methods take
// a context.Context first so request-scoped metadata such as trace_id can
// be extracted automatically. Adapters wrap concrete libraries (zerolog in
// production, a recording mock in tests).
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, err error, fields ...Field)
	Fatal(ctx context.Context, msg string, err error, fields ...Field)

	WithTraceID(traceID string) Logger
	WithFields(fields ...Field) Logger
	WithComponent(component string) Logger

	ToContext(ctx context.Context) context.Context
}

// Field is a key-value pair attached to a structured log entry.
type Field struct {
	Key   string
	Value interface{}
}

func (f Field) String() string {
	return fmt.Sprintf("%s=%v", f.Key, f.Value)
}

func String(key, val string) Field {
	return Field{Key: key, Value: val}
}

func Int(key string, val int) Field {
	return Field{Key: key, Value: val}
}

func Int64(key string, val int64) Field {
	return Field{Key: key, Value: val}
}

func Bool(key string, val bool) Field {
	return Field{Key: key, Value: val}
}

func Any(key string, val interface{}) Field {
	return Field{Key: key, Value: val}
}

// ErrorField attaches an error message under the "error" key.
func ErrorField(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

type contextKey string

const (
	LoggerContextKey contextKey = "logger"
	TraceIDKey       contextKey = "trace-id"
	ComponentKey     contextKey = "component"
)

func GetLoggerFromContext(ctx context.Context) Logger {
	if ctx == nil {
		return nil
	}
	if logger, ok := ctx.Value(LoggerContextKey).(Logger); ok {
		return logger
	}
	return nil
}

func GetTraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// DefaultLogger is a no-op Logger for components constructed without one.
type DefaultLogger struct{}

var _ Logger = (*DefaultLogger)(nil)

func (d *DefaultLogger) Debug(ctx context.Context, msg string, fields ...Field)            {}
func (d *DefaultLogger) Info(ctx context.Context, msg string, fields ...Field)             {}
func (d *DefaultLogger) Warn(ctx context.Context, msg string, fields ...Field)             {}
func (d *DefaultLogger) Error(ctx context.Context, msg string, err error, fields ...Field) {}
func (d *DefaultLogger) Fatal(ctx context.Context, msg string, err error, fields ...Field) {}
func (d *DefaultLogger) WithTraceID(traceID string) Logger                                 { return d }
func (d *DefaultLogger) WithFields(fields ...Field) Logger                                 { return d }
func (d *DefaultLogger) WithComponent(component string) Logger                             { return d }
func (d *DefaultLogger) ToContext(ctx context.Context) context.Context                     { return ctx }
