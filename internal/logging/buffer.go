package logging

import (
	"sync"
	"time"
)

// LogEntry is one log line kept for the logs API.
type LogEntry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level"`
	Module     string         `json:"module"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// RingBuffer keeps the most recent log entries. Safe for concurrent use.
type RingBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	next    int  // slot the next Write fills
	full    bool // every slot has been written at least once
}

// NewRingBuffer creates a buffer holding up to size entries.
func NewRingBuffer(size int) *RingBuffer {
	if size < 1 {
		size = 1
	}
	return &RingBuffer{entries: make([]LogEntry, size)}
}

// Write stores entry, dropping the oldest one when the buffer is full.
func (rb *RingBuffer) Write(entry LogEntry) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.entries[rb.next] = entry
	rb.next++
	if rb.next == len(rb.entries) {
		rb.next = 0
		rb.full = true
	}
}

// ReadAll returns every stored entry, oldest first.
func (rb *RingBuffer) ReadAll() []LogEntry {
	return rb.Query("", 0)
}

// Query returns entries of module (all modules when empty), oldest first.
// A positive limit keeps only the newest limit matches.
func (rb *RingBuffer) Query(module string, limit int) []LogEntry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	var out []LogEntry
	rb.each(func(e LogEntry) {
		if module == "" || e.Module == module {
			out = append(out, e)
		}
	})
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Count returns the number of stored entries.
func (rb *RingBuffer) Count() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	if rb.full {
		return len(rb.entries)
	}
	return rb.next
}

// each visits stored entries oldest first. The caller holds rb.mu.
func (rb *RingBuffer) each(fn func(LogEntry)) {
	if rb.full {
		for _, e := range rb.entries[rb.next:] {
			fn(e)
		}
	}
	for _, e := range rb.entries[:rb.next] {
		fn(e)
	}
}
