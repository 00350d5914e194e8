package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

const journalIdentifier = "camtune"

// JournalHandler writes records to the systemd journal. Attributes become
// upper case journal fields, so `journalctl MODULE=negotiate` filters by
// module.
type JournalHandler struct {
	scope
}

// NewJournalHandler returns a journal handler gated by level.
func NewJournalHandler(level slog.Leveler) *JournalHandler {
	return &JournalHandler{scope{level: level}}
}

func (h *JournalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *JournalHandler) Handle(_ context.Context, r slog.Record) error {
	if err := journal.Send(r.Message, journalPriority(r.Level), h.fields(r)); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	return nil
}

func (h *JournalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &JournalHandler{h.withAttrs(attrs)}
}

func (h *JournalHandler) WithGroup(name string) slog.Handler {
	return &JournalHandler{h.withGroup(name)}
}

// fields builds the journal variables of r. MESSAGE and PRIORITY are added
// by journal.Send.
func (h *JournalHandler) fields(r slog.Record) map[string]string {
	fields := map[string]string{"SYSLOG_IDENTIFIER": journalIdentifier}
	h.each(r, func(path []string, a slog.Attr) {
		key := journalField(joinKey(path, a.Key, "_"))
		if key == "" {
			return
		}
		fields[key] = journalValue(a.Value)
	})
	return fields
}

// journalField upper-cases key and replaces characters journald rejects.
// Names may not start with an underscore, those are trusted fields.
func journalField(key string) string {
	key = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	return strings.TrimLeft(key, "_")
}

func journalValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return v.String()
}

func journalPriority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// IsJournalAvailable reports whether the journald socket accepts writes.
func IsJournalAvailable() bool {
	return journal.Enabled()
}
