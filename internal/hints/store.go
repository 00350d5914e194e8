// Package hints persists the last tier that produced a verified stream for
// each facing request. Hints are written after successful negotiations and
// displayed by the API and CLI.
package hints

import (
	"sync"
	"time"

	"github.com/smazurov/camtune/internal/media"
)

// Hint is the tier that last won for a facing request.
type Hint struct {
	Tier      media.Range `toml:"tier" json:"tier"`
	UpdatedAt time.Time   `toml:"updated_at" json:"updated_at"`
}

// Store records and returns capability hints keyed by the raw facing value.
type Store interface {
	Load() error
	Set(facing media.FacingRequest, tier media.Range) error
	Get(facing media.FacingRequest) (Hint, bool)
	All() map[media.FacingRequest]Hint
}

// memoryStore keeps hints for the lifetime of the process.
type memoryStore struct {
	mu    sync.RWMutex
	hints map[string]Hint
}

// NewMemory creates a Store that does not persist.
func NewMemory() Store {
	return &memoryStore{hints: make(map[string]Hint)}
}

func (s *memoryStore) Load() error { return nil }

func (s *memoryStore) Set(facing media.FacingRequest, tier media.Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hints[string(facing)] = Hint{Tier: tier, UpdatedAt: time.Now().UTC()}
	return nil
}

func (s *memoryStore) Get(facing media.FacingRequest) (Hint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hints[string(facing)]
	return h, ok
}

func (s *memoryStore) All() map[media.FacingRequest]Hint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyHints(s.hints)
}

func copyHints(in map[string]Hint) map[media.FacingRequest]Hint {
	out := make(map[media.FacingRequest]Hint, len(in))
	for k, v := range in {
		out[media.FacingRequest(k)] = v
	}
	return out
}
