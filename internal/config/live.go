package config

import (
	"sync/atomic"
	"time"

	"github.com/smazurov/camtune/internal/media"
)

// LiveCamera holds the camera settings in effect, swapped atomically when the
// config file is reloaded.
type LiveCamera struct {
	v atomic.Pointer[CameraConfig]
}

// NewLiveCamera creates a holder starting at c.
func NewLiveCamera(c CameraConfig) *LiveCamera {
	l := &LiveCamera{}
	l.Store(c)
	return l
}

// Load returns the current settings.
func (l *LiveCamera) Load() CameraConfig {
	return *l.v.Load()
}

// Store replaces the current settings.
func (l *LiveCamera) Store(c CameraConfig) {
	l.v.Store(&c)
}

// DeviceFor returns the device currently mapped to facing.
func (l *LiveCamera) DeviceFor(facing media.FacingRequest) string {
	return l.Load().DeviceFor(facing)
}

// ProbeTimeout returns the current liveness timeout.
func (l *LiveCamera) ProbeTimeout() time.Duration {
	return l.Load().ProbeTimeout()
}

// ProbeSettle returns the current settle delay.
func (l *LiveCamera) ProbeSettle() time.Duration {
	return l.Load().ProbeSettle()
}
