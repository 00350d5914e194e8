package hints

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smazurov/camtune/internal/media"
)

func setupTestStore(t *testing.T) (*tomlStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hints.toml")
	return NewTOML(path).(*tomlStore), path
}

func TestNewTOMLDefaultPath(t *testing.T) {
	s := NewTOML("").(*tomlStore)
	if s.path != "hints.toml" {
		t.Errorf("expected default path hints.toml, got %s", s.path)
	}
	if s.data.Version != 1 || s.data.Hints == nil {
		t.Error("store should be initialized")
	}
}

func TestLoadMissingFile(t *testing.T) {
	s, _ := setupTestStore(t)

	if err := s.Load(); err != nil {
		t.Fatalf("Load should not error on missing file, got: %v", err)
	}
	if len(s.All()) != 0 {
		t.Error("expected no hints")
	}
}

func TestSetPersists(t *testing.T) {
	s, path := setupTestStore(t)

	if err := s.Set(media.FacingBack, media.Range{Ideal: 3840}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(media.FacingFront, media.Range{Min: 1280}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("hints file not written: %v", err)
	}
	if !strings.Contains(string(raw), "environment") {
		t.Errorf("hints file does not key by raw facing value:\n%s", raw)
	}

	reloaded := NewTOML(path)
	if loadErr := reloaded.Load(); loadErr != nil {
		t.Fatalf("Load failed: %v", loadErr)
	}

	back, ok := reloaded.Get(media.FacingBack)
	if !ok || back.Tier != (media.Range{Ideal: 3840}) {
		t.Errorf("back hint = %+v (%v)", back, ok)
	}
	if back.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not persisted")
	}
	front, ok := reloaded.Get(media.FacingFront)
	if !ok || front.Tier != (media.Range{Min: 1280}) {
		t.Errorf("front hint = %+v (%v)", front, ok)
	}
}

func TestSetOverwrites(t *testing.T) {
	s, _ := setupTestStore(t)

	_ = s.Set(media.FacingBack, media.Range{Ideal: 3840})
	_ = s.Set(media.FacingBack, media.Range{Min: 800})

	h, _ := s.Get(media.FacingBack)
	if h.Tier != (media.Range{Min: 800}) {
		t.Errorf("expected latest hint, got %v", h.Tier)
	}
	if len(s.All()) != 1 {
		t.Errorf("expected 1 hint, got %d", len(s.All()))
	}
}

func TestLoadHandlesMissingHintsTable(t *testing.T) {
	s, path := setupTestStore(t)

	if err := os.WriteFile(path, []byte("version = 1\n"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.data.Hints == nil {
		t.Error("Load should initialize hints map")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	s, path := setupTestStore(t)

	if err := os.WriteFile(path, []byte("hints = [[["), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if err := s.Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	s := NewMemory()
	_ = s.Set(media.FacingBack, media.Range{Ideal: 2560})

	all := s.All()
	delete(all, media.FacingBack)

	if _, ok := s.Get(media.FacingBack); !ok {
		t.Error("modifying All() result changed the store")
	}
}
