package negotiate

import (
	"testing"
	"time"

	"github.com/smazurov/camtune/internal/events"
)

func TestStatusDefaults(t *testing.T) {
	s := NewStatus(nil)
	snap := s.Snapshot()
	if snap.Camera != CameraPrompt {
		t.Errorf("camera = %s, want prompt", snap.Camera)
	}
	if snap.WeakResolution || snap.Progress != (Progress{}) {
		t.Errorf("unexpected initial snapshot %+v", snap)
	}
}

func TestStatusPublishesOnlyChanges(t *testing.T) {
	bus := events.New()
	s := NewStatus(bus)

	cameras := make(chan events.CameraStatusChangedEvent, 10)
	unsub := bus.Subscribe(func(e events.CameraStatusChangedEvent) { cameras <- e })
	defer unsub()

	s.SetCamera(CameraGranted)
	s.SetCamera(CameraGranted)
	s.SetCamera(CameraDenied)

	for _, want := range []string{"granted", "denied"} {
		select {
		case got := <-cameras:
			if got.Status != want {
				t.Errorf("status = %s, want %s", got.Status, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %s", want)
		}
	}

	select {
	case extra := <-cameras:
		t.Errorf("unexpected duplicate event %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStatusProgressEvents(t *testing.T) {
	bus := events.New()
	s := NewStatus(bus)

	progress := make(chan events.NegotiationProgressEvent, 10)
	unsub := bus.Subscribe(func(e events.NegotiationProgressEvent) { progress <- e })
	defer unsub()

	s.SetProgress(Progress{Position: 3, Total: 14})

	select {
	case got := <-progress:
		if got.Position != 3 || got.Total != 14 {
			t.Errorf("got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for progress event")
	}
	if s.Progress() != (Progress{Position: 3, Total: 14}) {
		t.Errorf("Progress() = %+v", s.Progress())
	}
}
