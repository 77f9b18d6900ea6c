package zerolog

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/bignyap/cloud-uploader/logger/api"
	"github.com/bignyap/cloud-uploader/logger/config"
	"github.com/rs/zerolog"
)

// Logger implements api.Logger on top of zerolog.
type Logger struct {
	log       zerolog.Logger
	component string
}

var _ api.Logger = (*Logger)(nil)

// NewZerologger creates a zerolog-backed logger writing to stdout.
func NewZerologger(cfg config.LogConfig) (*Logger, error) {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter creates a zerolog-backed logger writing to w. Tests pass a
// buffer here.
func NewWithWriter(cfg config.LogConfig, w io.Writer) (*Logger, error) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	if cfg.Format == "pretty" && cfg.Environment != "prod" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(w).With().Timestamp().Logger()
	for k, v := range cfg.Fields {
		logger = logger.With().Interface(k, v).Logger()
	}

	return &Logger{log: logger}, nil
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...api.Field) {
	l.emit(ctx, l.log.Debug(), nil, fields, msg)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...api.Field) {
	l.emit(ctx, l.log.Info(), nil, fields, msg)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...api.Field) {
	l.emit(ctx, l.log.Warn(), nil, fields, msg)
}

func (l *Logger) Error(ctx context.Context, msg string, err error, fields ...api.Field) {
	l.emit(ctx, l.log.Error(), err, fields, msg)
}

func (l *Logger) Fatal(ctx context.Context, msg string, err error, fields ...api.Field) {
	l.emit(ctx, l.log.Fatal(), err, fields, msg)
}

func (l *Logger) emit(ctx context.Context, event *zerolog.Event, err error, fields []api.Field, msg string) {
	if traceID := api.GetTraceIDFromContext(ctx); traceID != "" {
		event.Str("trace_id", traceID)
	}
	if l.component != "" {
		event.Str("component", l.component)
	}
	if err != nil {
		event.Err(err)
	}
	for _, f := range fields {
		event.Interface(f.Key, f.Value)
	}
	event.Msg(msg)
}

func (l *Logger) WithTraceID(traceID string) api.Logger {
	if traceID == "" {
		return l
	}
	return &Logger{log: l.log.With().Str("trace_id", traceID).Logger(), component: l.component}
}

func (l *Logger) WithFields(fields ...api.Field) api.Logger {
	if len(fields) == 0 {
		return l
	}
	lc := l.log.With()
	for _, f := range fields {
		lc = lc.Interface(f.Key, f.Value)
	}
	return &Logger{log: lc.Logger(), component: l.component}
}

func (l *Logger) WithComponent(component string) api.Logger {
	if component == "" {
		return l
	}
	return &Logger{log: l.log, component: component}
}

func (l *Logger) ToContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, api.LoggerContextKey, api.Logger(l))
	if l.component != "" {
		ctx = context.WithValue(ctx, api.ComponentKey, l.component)
	}
	return ctx
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "none", "off", "silent":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
