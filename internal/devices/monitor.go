package devices

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/smazurov/camtune/internal/events"
	"github.com/smazurov/camtune/internal/logging"
	"github.com/smazurov/camtune/internal/metrics"
)

// defaultSettle gives the kernel time to finish creating nodes after an add.
const defaultSettle = time.Second

func logger() logging.Logger {
	return logging.GetLogger("devices")
}

// Presence is a snapshot of the capture devices on the host.
type Presence struct {
	HasCamera bool     `json:"has_camera" doc:"True when at least one capture device exists"`
	Count     int      `json:"count" doc:"Number of capture devices"`
	Devices   []Device `json:"devices" doc:"Capture devices"`
}

// Monitor tracks device presence and publishes DevicePresenceEvent when it
// changes.
type Monitor struct {
	detector Detector
	bus      *events.Bus
	settle   time.Duration
	logger   logging.Logger

	mu      sync.RWMutex
	current Presence
	known   bool
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithSettle sets how long to wait after a change signal before enumerating.
func WithSettle(d time.Duration) MonitorOption {
	return func(m *Monitor) { m.settle = d }
}

// NewMonitor creates a presence monitor. bus may be nil.
func NewMonitor(detector Detector, bus *events.Bus, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		detector: detector,
		bus:      bus,
		settle:   defaultSettle,
		logger:   logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the last known presence.
func (m *Monitor) Current() Presence {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Refresh enumerates devices and publishes an event if presence changed.
// On enumeration failure the previous snapshot is kept.
func (m *Monitor) Refresh() (Presence, error) {
	list, err := m.detector.FindDevices()
	if err != nil {
		m.logger.Warn("Failed to enumerate capture devices", "error", err)
		return m.Current(), err
	}

	next := Presence{HasCamera: len(list) > 0, Count: len(list), Devices: list}

	m.mu.Lock()
	changed := !m.known || !sameDevices(next.Devices, m.current.Devices)
	m.current = next
	m.known = true
	m.mu.Unlock()

	metrics.SetDevicesPresent(next.Count)
	if changed {
		m.logger.Info("Capture devices changed", "count", next.Count, "has_camera", next.HasCamera)
		if m.bus != nil {
			m.bus.Publish(events.DevicePresenceEvent{
				HasCamera: next.HasCamera,
				Count:     next.Count,
				Timestamp: time.Now().Format(time.RFC3339),
			})
		}
	}
	return next, nil
}

// sameDevices reports whether a and b list the same nodes backed by the
// same hardware, in order.
func sameDevices(a, b []Device) bool {
	return slices.EqualFunc(a, b, func(x, y Device) bool {
		return x.Path == y.Path && x.ID == y.ID
	})
}

// Run refreshes once, then again after every change signal from src until
// ctx is done. If src cannot deliver changes the initial snapshot stands.
func (m *Monitor) Run(ctx context.Context, src ChangeSource) error {
	_, _ = m.Refresh()

	changes, err := src.Changes(ctx)
	if err != nil {
		m.logger.Warn("Device hotplug monitoring unavailable", "error", err)
		<-ctx.Done()
		return ctx.Err()
	}

	m.logger.Info("Device hotplug monitoring started")
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Device hotplug monitoring stopped")
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				return ctx.Err()
			}
			if !m.wait(ctx) {
				return ctx.Err()
			}
			_, _ = m.Refresh()
		}
	}
}

func (m *Monitor) wait(ctx context.Context) bool {
	if m.settle <= 0 {
		return true
	}
	t := time.NewTimer(m.settle)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
