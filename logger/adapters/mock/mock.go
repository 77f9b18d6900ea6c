package mock

import (
	"context"
	"sync"

	"github.com/bignyap/cloud-uploader/logger/api"
)

// Level names the severity of a recorded entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Entry is one recorded log call.
type Entry struct {
	Level   Level
	Message string
	Error   error
	Fields  []api.Field
}

// Mock records log calls for assertions in tests. Derived loggers
// (WithComponent etc.) share the same recording.
type Mock struct {
	mu        sync.Mutex
	entries   *[]Entry
	component string
	fields    []api.Field
	traceID   string
}

var _ api.Logger = (*Mock)(nil)

// NewMockLogger creates an empty recording logger.
func NewMockLogger() *Mock {
	entries := []Entry{}
	return &Mock{entries: &entries}
}

func (m *Mock) record(level Level, msg string, err error, fields []api.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.entries = append(*m.entries, Entry{
		Level:   level,
		Message: msg,
		Error:   err,
		Fields:  append(append([]api.Field{}, m.fields...), fields...),
	})
}

func (m *Mock) Debug(ctx context.Context, msg string, fields ...api.Field) {
	m.record(LevelDebug, msg, nil, fields)
}

func (m *Mock) Info(ctx context.Context, msg string, fields ...api.Field) {
	m.record(LevelInfo, msg, nil, fields)
}

func (m *Mock) Warn(ctx context.Context, msg string, fields ...api.Field) {
	m.record(LevelWarn, msg, nil, fields)
}

func (m *Mock) Error(ctx context.Context, msg string, err error, fields ...api.Field) {
	m.record(LevelError, msg, err, fields)
}

// Fatal records the entry; unlike a real logger it does not exit.
func (m *Mock) Fatal(ctx context.Context, msg string, err error, fields ...api.Field) {
	m.record(LevelFatal, msg, err, fields)
}

func (m *Mock) derive() *Mock {
	return &Mock{
		entries:   m.entries,
		component: m.component,
		fields:    m.fields,
		traceID:   m.traceID,
	}
}

func (m *Mock) WithTraceID(traceID string) api.Logger {
	d := m.derive()
	d.traceID = traceID
	return d
}

func (m *Mock) WithFields(fields ...api.Field) api.Logger {
	d := m.derive()
	d.fields = append(append([]api.Field{}, m.fields...), fields...)
	return d
}

func (m *Mock) WithComponent(component string) api.Logger {
	d := m.derive()
	d.component = component
	return d
}

func (m *Mock) ToContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, api.LoggerContextKey, api.Logger(m))
	if m.traceID != "" {
		ctx = context.WithValue(ctx, api.TraceIDKey, m.traceID)
	}
	return ctx
}

// Entries returns a copy of everything recorded so far.
func (m *Mock) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry{}, *m.entries...)
}

// EntriesAt returns the recorded entries with the given level.
func (m *Mock) EntriesAt(level Level) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for _, e := range *m.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Clear drops everything recorded so far.
func (m *Mock) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.entries = (*m.entries)[:0]
}
