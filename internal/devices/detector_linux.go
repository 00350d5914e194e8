//go:build linux

package devices

import (
	"context"

	"github.com/smazurov/camtune/pkg/linuxav/hotplug"
	"github.com/smazurov/camtune/pkg/linuxav/v4l2"
)

type linuxDetector struct{}

func newDetector() Detector {
	return linuxDetector{}
}

func (linuxDetector) FindDevices() ([]Device, error) {
	found, err := v4l2.FindDevices()
	if err != nil {
		return nil, err
	}
	out := make([]Device, len(found))
	for i, d := range found {
		out[i] = Device{Path: d.DevicePath, Name: d.DeviceName, ID: d.DeviceID, Caps: d.Caps}
	}
	return out, nil
}

type hotplugSource struct{}

// NewChangeSource returns a source fed by kernel video4linux uevents.
func NewChangeSource() ChangeSource {
	return hotplugSource{}
}

func (hotplugSource) Changes(ctx context.Context) (<-chan struct{}, error) {
	mon, err := hotplug.NewMonitor(hotplug.SubsystemVideo4Linux)
	if err != nil {
		return nil, err
	}

	uevents := make(chan hotplug.Event, 16)
	changes := make(chan struct{}, 1)

	go func() {
		defer func() { _ = mon.Close() }()
		if err := mon.Run(ctx, uevents); err != nil && ctx.Err() == nil {
			logger().Warn("Hotplug monitor stopped", "error", err)
		}
	}()

	go func() {
		defer close(changes)
		for ev := range uevents {
			if ev.Action != hotplug.ActionAdd && ev.Action != hotplug.ActionRemove {
				continue
			}
			logger().Debug("Device uevent", "action", ev.Action, "node", ev.Node())
			select {
			case changes <- struct{}{}:
			default:
				// a refresh is already pending
			}
		}
	}()

	return changes, nil
}
