package devices

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/camtune/internal/events"
)

type fakeDetector struct {
	mu      sync.Mutex
	devices []Device
	err     error
	calls   int
}

func (f *fakeDetector) FindDevices() ([]Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]Device(nil), f.devices...), nil
}

func (f *fakeDetector) set(devs ...Device) {
	f.mu.Lock()
	f.devices = devs
	f.mu.Unlock()
}

type fakeSource struct {
	ch  chan struct{}
	err error
}

func (f *fakeSource) Changes(context.Context) (<-chan struct{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ch, nil
}

func collectPresence(t *testing.T, bus *events.Bus) <-chan events.DevicePresenceEvent {
	t.Helper()
	ch := make(chan events.DevicePresenceEvent, 16)
	unsub := bus.Subscribe(func(e events.DevicePresenceEvent) { ch <- e })
	t.Cleanup(unsub)
	return ch
}

func waitPresence(t *testing.T, ch <-chan events.DevicePresenceEvent) events.DevicePresenceEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for presence event")
		return events.DevicePresenceEvent{}
	}
}

var cam0 = Device{Path: "/dev/video0", Name: "USB Camera", ID: "usb-cam-video-index0"}

func TestRefreshPublishesOnlyOnChange(t *testing.T) {
	bus := events.New()
	got := collectPresence(t, bus)
	det := &fakeDetector{devices: []Device{cam0}}
	m := NewMonitor(det, bus)

	p, err := m.Refresh()
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if !p.HasCamera || p.Count != 1 {
		t.Errorf("presence = %+v", p)
	}
	if e := waitPresence(t, got); !e.HasCamera || e.Count != 1 {
		t.Errorf("event = %+v", e)
	}

	// unchanged devices publish nothing
	if _, err := m.Refresh(); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	select {
	case e := <-got:
		t.Fatalf("unexpected event %+v", e)
	case <-time.After(50 * time.Millisecond):
	}

	det.set()
	m.Refresh()
	if e := waitPresence(t, got); e.HasCamera || e.Count != 0 {
		t.Errorf("event after unplug = %+v", e)
	}
}

func TestRefreshPublishesOnSwap(t *testing.T) {
	bus := events.New()
	got := collectPresence(t, bus)
	det := &fakeDetector{devices: []Device{cam0}}
	m := NewMonitor(det, bus)

	m.Refresh()
	waitPresence(t, got)

	tests := []struct {
		name string
		dev  Device
	}{
		{"different node", Device{Path: "/dev/video2", Name: "USB Camera", ID: cam0.ID}},
		{"different hardware on same node", Device{Path: "/dev/video2", Name: "Other Camera", ID: "usb-other-video-index0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det.set(tt.dev)
			p, err := m.Refresh()
			if err != nil {
				t.Fatalf("Refresh() error: %v", err)
			}
			if p.Devices[0] != tt.dev {
				t.Errorf("Devices = %+v", p.Devices)
			}
			if e := waitPresence(t, got); !e.HasCamera || e.Count != 1 {
				t.Errorf("event = %+v", e)
			}
		})
	}
}

func TestSameDevices(t *testing.T) {
	cam1 := Device{Path: "/dev/video2", ID: "usb-cam-video-index1"}
	tests := []struct {
		name string
		a, b []Device
		want bool
	}{
		{"both empty", nil, []Device{}, true},
		{"same", []Device{cam0, cam1}, []Device{cam0, cam1}, true},
		{"name ignored", []Device{cam0}, []Device{{Path: cam0.Path, ID: cam0.ID, Name: "renamed"}}, true},
		{"different count", []Device{cam0}, []Device{cam0, cam1}, false},
		{"different path", []Device{cam0}, []Device{{Path: "/dev/video4", ID: cam0.ID}}, false},
		{"different id", []Device{cam0}, []Device{{Path: cam0.Path, ID: "usb-other"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameDevices(tt.a, tt.b); got != tt.want {
				t.Errorf("sameDevices() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRefreshKeepsSnapshotOnError(t *testing.T) {
	det := &fakeDetector{devices: []Device{cam0}}
	m := NewMonitor(det, nil)
	m.Refresh()

	det.err = errors.New("boom")
	p, err := m.Refresh()
	if err == nil {
		t.Fatal("expected error")
	}
	if p.Count != 1 || m.Current().Count != 1 {
		t.Errorf("snapshot lost: %+v", p)
	}
}

func TestRunRefreshesOnChange(t *testing.T) {
	bus := events.New()
	got := collectPresence(t, bus)
	det := &fakeDetector{}
	src := &fakeSource{ch: make(chan struct{}, 1)}
	m := NewMonitor(det, bus, WithSettle(0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, src) }()

	if e := waitPresence(t, got); e.HasCamera {
		t.Errorf("initial event = %+v", e)
	}

	det.set(cam0)
	src.ch <- struct{}{}
	if e := waitPresence(t, got); !e.HasCamera || e.Count != 1 {
		t.Errorf("event after plug = %+v", e)
	}
	if devs := m.Current().Devices; len(devs) != 1 || devs[0].Path != "/dev/video0" {
		t.Errorf("Current().Devices = %+v", devs)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRunWithoutChangeSource(t *testing.T) {
	det := &fakeDetector{devices: []Device{cam0}}
	m := NewMonitor(det, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := m.Run(ctx, &fakeSource{err: ErrMonitoringUnavailable})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() = %v", err)
	}
	if !m.Current().HasCamera {
		t.Error("initial snapshot should still be taken")
	}
}

func TestResolveDevicePath(t *testing.T) {
	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{ref: "/dev/video2", want: "/dev/video2"},
		{ref: "  /dev/video0 ", want: "/dev/video0"},
		{ref: "", wantErr: true},
		{ref: "usb-does-not-exist-video-index9", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ResolveDevicePath(tt.ref)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolveDevicePath(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveDevicePath(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
