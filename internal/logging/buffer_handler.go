package logging

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// LogCallback receives every entry the buffer handler records. It lets the
// caller publish log events without this package importing the event bus.
type LogCallback func(entry LogEntry)

// BufferHandler records entries in the global ring buffer and hands each one
// to the registered LogCallback.
type BufferHandler struct {
	scope
}

// NewBufferHandler returns a buffer handler gated by level.
func NewBufferHandler(level slog.Leveler) *BufferHandler {
	return &BufferHandler{scope{level: level}}
}

func (h *BufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *BufferHandler) Handle(_ context.Context, r slog.Record) error {
	entry := LogEntry{
		Timestamp:  r.Time,
		Level:      levelToString(r.Level),
		Module:     "app",
		Message:    r.Message,
		Attributes: make(map[string]any),
	}
	h.each(r, func(path []string, a slog.Attr) {
		if len(path) == 0 && a.Key == "module" {
			entry.Module = a.Value.String()
			return
		}
		entry.Attributes[joinKey(path, a.Key, ".")] = plainValue(a.Value)
	})

	mutex.RLock()
	buffer, callback := logBuffer, logCallback
	mutex.RUnlock()

	if buffer != nil {
		buffer.Write(entry)
	}
	if callback != nil {
		callback(entry)
	}
	return nil
}

func (h *BufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &BufferHandler{h.withAttrs(attrs)}
}

func (h *BufferHandler) WithGroup(name string) slog.Handler {
	return &BufferHandler{h.withGroup(name)}
}

// plainValue converts v to something that marshals cleanly to JSON.
func plainValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return v.Any()
}

// FormatLogLine renders entry as "<time> [LEVEL] [module] message k=v ...",
// with attributes sorted by key.
func FormatLogLine(entry LogEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] [%s] %s",
		entry.Timestamp.Format(time.RFC3339Nano), strings.ToUpper(entry.Level), entry.Module, entry.Message)

	keys := make([]string, 0, len(entry.Attributes))
	for k := range entry.Attributes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, entry.Attributes[k])
	}
	return sb.String()
}
