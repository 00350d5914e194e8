package logging

import (
	"log/slog"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

func TestJournalFields(t *testing.T) {
	h := NewJournalHandler(slog.LevelDebug).
		WithAttrs([]slog.Attr{slog.String("module", "negotiate")}).
		WithGroup("tier").(*JournalHandler)

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "Tier verified", 0)
	r.AddAttrs(
		slog.Int("width", 1920),
		slog.Group("facing", slog.String("mode", "environment")),
		slog.String("session-id", "3f2a"),
	)

	got := h.fields(r)
	want := map[string]string{
		"SYSLOG_IDENTIFIER": "camtune",
		"MODULE":            "negotiate",
		"TIER_WIDTH":        "1920",
		"TIER_FACING_MODE":  "environment",
		"TIER_SESSION_ID":   "3f2a",
	}
	if len(got) != len(want) {
		t.Errorf("fields = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestJournalField(t *testing.T) {
	tests := map[string]string{
		"module":      "MODULE",
		"http.status": "HTTP_STATUS",
		"_hidden":     "HIDDEN",
		"__":          "",
	}
	for in, want := range tests {
		if got := journalField(in); got != want {
			t.Errorf("journalField(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJournalPriority(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  journal.Priority
	}{
		{slog.LevelDebug, journal.PriDebug},
		{slog.LevelInfo, journal.PriInfo},
		{slog.LevelWarn, journal.PriWarning},
		{slog.LevelError, journal.PriErr},
		{slog.LevelError + 4, journal.PriErr},
	}
	for _, tt := range tests {
		if got := journalPriority(tt.level); got != tt.want {
			t.Errorf("journalPriority(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

// Attributes added before a group is opened stay outside it.
func TestScopeKeepsAttrGroups(t *testing.T) {
	s := scope{level: slog.LevelInfo}.
		withGroup("req").
		withAttrs([]slog.Attr{slog.String("id", "1")}).
		withGroup("resp")

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "done", 0)
	r.AddAttrs(slog.Int("status", 200), slog.Group("", slog.Bool("cached", true)))

	got := map[string]any{}
	s.each(r, func(path []string, a slog.Attr) {
		got[joinKey(path, a.Key, ".")] = a.Value.Any()
	})

	want := map[string]any{"req.id": "1", "req.resp.status": int64(200), "req.resp.cached": true}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v (all: %v)", k, got[k], v, got)
		}
	}
}
