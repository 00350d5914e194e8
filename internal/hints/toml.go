package hints

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/smazurov/camtune/internal/media"
)

// file is the hints file layout.
type file struct {
	Version int             `toml:"version"`
	Hints   map[string]Hint `toml:"hints"`
}

// tomlStore implements Store on a TOML file. Every Set rewrites the file.
type tomlStore struct {
	mu   sync.RWMutex
	path string
	data *file
}

// NewTOML creates a TOML-backed store. Call Load to read existing hints.
func NewTOML(path string) Store {
	if path == "" {
		path = "hints.toml"
	}
	return &tomlStore{
		path: path,
		data: &file{Version: 1, Hints: make(map[string]Hint)},
	}
}

// Load reads hints from disk. A missing file is an empty store.
func (s *tomlStore) Load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read hints file: %w", err)
	}

	var data file
	if unmarshalErr := toml.Unmarshal(raw, &data); unmarshalErr != nil {
		return fmt.Errorf("failed to parse hints file: %w", unmarshalErr)
	}
	if data.Hints == nil {
		data.Hints = make(map[string]Hint)
	}
	if data.Version == 0 {
		data.Version = 1
	}

	s.mu.Lock()
	s.data = &data
	s.mu.Unlock()
	return nil
}

func (s *tomlStore) Set(facing media.FacingRequest, tier media.Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Hints[string(facing)] = Hint{Tier: tier, UpdatedAt: time.Now().UTC().Truncate(time.Second)}
	return s.save()
}

func (s *tomlStore) Get(facing media.FacingRequest) (Hint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.data.Hints[string(facing)]
	return h, ok
}

func (s *tomlStore) All() map[media.FacingRequest]Hint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyHints(s.data.Hints)
}

// save writes the file. Caller holds mu.
func (s *tomlStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create hints directory: %w", err)
	}

	raw, err := toml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to marshal hints: %w", err)
	}

	tmp := s.path + ".tmp"
	if writeErr := os.WriteFile(tmp, raw, 0o644); writeErr != nil {
		return fmt.Errorf("failed to write hints file: %w", writeErr)
	}
	if renameErr := os.Rename(tmp, s.path); renameErr != nil {
		return fmt.Errorf("failed to replace hints file: %w", renameErr)
	}
	return nil
}
