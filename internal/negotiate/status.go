package negotiate

import (
	"sync"
	"time"

	"github.com/smazurov/camtune/internal/events"
)

// CameraStatus is the camera permission status shown to users.
type CameraStatus string

// Camera statuses.
const (
	CameraGranted      CameraStatus = "granted"
	CameraDenied       CameraStatus = "denied"
	CameraPrompt       CameraStatus = "prompt"
	CameraNotSupported CameraStatus = "not-supported"
)

// Progress is the position over tier attempts. {0,0} means idle.
type Progress struct {
	Position int `json:"position"`
	Total    int `json:"total"`
}

// StatusSnapshot is a point-in-time copy of a Status.
type StatusSnapshot struct {
	Camera         CameraStatus `json:"camera"`
	WeakResolution bool         `json:"weak_resolution"`
	Progress       Progress     `json:"progress"`
}

// Status holds the signals a negotiation exposes to its caller. It is passed
// to sessions by reference and read back by the caller; every change is
// published on the bus when one is set.
type Status struct {
	mu       sync.RWMutex
	camera   CameraStatus
	weak     bool
	progress Progress
	bus      *events.Bus
}

// NewStatus creates a Status in the prompt state. bus may be nil.
func NewStatus(bus *events.Bus) *Status {
	return &Status{
		camera: CameraPrompt,
		bus:    bus,
	}
}

// Camera returns the camera permission status.
func (s *Status) Camera() CameraStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camera
}

// SetCamera updates the camera permission status.
func (s *Status) SetCamera(c CameraStatus) {
	s.mu.Lock()
	changed := s.camera != c
	s.camera = c
	s.mu.Unlock()

	if changed {
		s.publish(events.CameraStatusChangedEvent{Status: string(c), Timestamp: now()})
	}
}

// WeakResolution reports whether the last negotiation failed to deliver a
// verified stream.
func (s *Status) WeakResolution() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weak
}

// SetWeakResolution updates the weak resolution flag.
func (s *Status) SetWeakResolution(weak bool) {
	s.mu.Lock()
	changed := s.weak != weak
	s.weak = weak
	s.mu.Unlock()

	if changed {
		s.publish(events.WeakResolutionChangedEvent{Weak: weak, Timestamp: now()})
	}
}

// Progress returns the current tier progress.
func (s *Status) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// SetProgress updates the tier progress.
func (s *Status) SetProgress(p Progress) {
	s.mu.Lock()
	s.progress = p
	s.mu.Unlock()

	s.publish(events.NegotiationProgressEvent{Position: p.Position, Total: p.Total, Timestamp: now()})
}

// Snapshot returns a copy of all signals.
func (s *Status) Snapshot() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatusSnapshot{
		Camera:         s.camera,
		WeakResolution: s.weak,
		Progress:       s.progress,
	}
}

func (s *Status) publish(ev events.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

func now() string {
	return time.Now().Format(time.RFC3339)
}
