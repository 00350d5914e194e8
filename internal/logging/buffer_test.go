package logging

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestRingBufferWrapsOldestFirst(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := range 5 {
		rb.Write(LogEntry{Message: string(rune('a' + i))})
	}

	if rb.Count() != 3 {
		t.Fatalf("expected 3 entries, got %d", rb.Count())
	}
	var got []string
	for _, e := range rb.ReadAll() {
		got = append(got, e.Message)
	}
	if strings.Join(got, "") != "cde" {
		t.Errorf("expected oldest-first cde, got %v", got)
	}
}

func TestRingBufferEmpty(t *testing.T) {
	if NewRingBuffer(4).ReadAll() != nil {
		t.Error("expected nil for empty buffer")
	}
}

func TestRingBufferQuery(t *testing.T) {
	rb := NewRingBuffer(4)
	for _, e := range []LogEntry{
		{Module: "api", Message: "a1"},
		{Module: "negotiate", Message: "n1"},
		{Module: "api", Message: "a2"},
		{Module: "negotiate", Message: "n2"},
		{Module: "api", Message: "a3"},
	} {
		rb.Write(e)
	}

	tests := []struct {
		name   string
		module string
		limit  int
		want   string
	}{
		{"all after wrap", "", 0, "n1a2n2a3"},
		{"module", "negotiate", 0, "n1n2"},
		{"limit keeps newest", "", 2, "n2a3"},
		{"module and limit", "api", 1, "a3"},
		{"unknown module", "v4l2", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got strings.Builder
			for _, e := range rb.Query(tt.module, tt.limit) {
				got.WriteString(e.Message)
			}
			if got.String() != tt.want {
				t.Errorf("Query(%q, %d) = %q, want %q", tt.module, tt.limit, got.String(), tt.want)
			}
		})
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("journal down") }

func TestMultiHandlerKeepsWritingAfterFailure(t *testing.T) {
	var buf strings.Builder
	text := slog.NewTextHandler(&buf, nil)
	multi := NewMultiHandler(failingHandler{text}, text)

	err := multi.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "stream held", 0))
	if err == nil || !strings.Contains(err.Error(), "journal down") {
		t.Errorf("expected joined error, got %v", err)
	}
	if !strings.Contains(buf.String(), "stream held") {
		t.Errorf("second handler did not write, output %q", buf.String())
	}
}

func TestBufferHandlerCapturesModuleAndAttrs(t *testing.T) {
	mutex.Lock()
	logBuffer = NewRingBuffer(10)
	var seen []LogEntry
	logCallback = func(e LogEntry) { seen = append(seen, e) }
	mutex.Unlock()
	t.Cleanup(func() {
		mutex.Lock()
		logCallback = nil
		mutex.Unlock()
	})

	level := &slog.LevelVar{}
	logger := slog.New(NewBufferHandler(level)).With("module", "negotiate")
	logger.Debug("dropped")
	logger.WithGroup("tier").Warn("Tier over-constrained", "width", 3840, "error", errors.New("EINVAL"))

	entries := GetBuffer().ReadAll()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Module != "negotiate" || e.Level != "warn" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Attributes["tier.width"] != int64(3840) {
		t.Errorf("tier.width = %v (%T)", e.Attributes["tier.width"], e.Attributes["tier.width"])
	}
	if e.Attributes["tier.error"] != "EINVAL" {
		t.Errorf("tier.error = %v", e.Attributes["tier.error"])
	}
	if len(seen) != 1 {
		t.Errorf("callback called %d times, want 1", len(seen))
	}
}

func TestFormatLogLine(t *testing.T) {
	line := FormatLogLine(LogEntry{
		Timestamp:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:      "info",
		Module:     "api",
		Message:    "Stream negotiated",
		Attributes: map[string]any{"tier": "ideal:3840", "fallback": false},
	})

	want := "2026-01-02T03:04:05Z [INFO] [api] Stream negotiated fallback=false tier=ideal:3840"
	if line != want {
		t.Errorf("got  %q\nwant %q", line, want)
	}
}
