// Package devices reports which capture devices are present and keeps that
// picture current as cameras come and go. Presence is informational: it feeds
// the status display and never gates a negotiation.
package devices

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Device describes one video capture node.
type Device struct {
	Path string `json:"path" example:"/dev/video0" doc:"Device node"`
	Name string `json:"name" example:"HD USB Camera" doc:"Driver reported card name"`
	ID   string `json:"id" example:"usb-046d_HD_USB_Camera-video-index0" doc:"Stable device identifier"`
	Caps uint32 `json:"caps" example:"69206017" doc:"V4L2 capability bits"`
}

// Detector enumerates capture devices.
type Detector interface {
	FindDevices() ([]Device, error)
}

// ChangeSource signals that the set of capture devices may have changed.
type ChangeSource interface {
	Changes(ctx context.Context) (<-chan struct{}, error)
}

// ErrMonitoringUnavailable is returned by change sources on platforms without
// device hotplug notifications.
var ErrMonitoringUnavailable = errors.New("device monitoring not available")

// NewDetector returns the detector for this platform.
func NewDetector() Detector {
	return newDetector()
}

// ResolveDevicePath converts a configured device reference to a node path.
// Absolute /dev paths are returned as-is; stable ids are looked up under
// /dev/v4l/by-id and /dev/v4l/by-path.
func ResolveDevicePath(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("empty device reference")
	}
	if strings.HasPrefix(ref, "/dev/") {
		return ref, nil
	}

	for _, dir := range []string{"/dev/v4l/by-id/", "/dev/v4l/by-path/"} {
		path := dir + ref
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no stable symlink found for device ID: %s", ref)
}
