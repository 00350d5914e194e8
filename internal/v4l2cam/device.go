// Package v4l2cam implements the capture model on Linux V4L2 devices.
// A Device opens a capture node per stream, tracks switch frame size with
// VIDIOC_S_FMT, and the Player checks liveness by decoding one frame with
// ffprobe.
package v4l2cam

import (
	"github.com/smazurov/camtune/internal/devices"
	"github.com/smazurov/camtune/internal/logging"
	"github.com/smazurov/camtune/internal/media"
)

// DeviceMap maps a facing request to a configured device reference: a /dev
// path or a stable id under /dev/v4l.
type DeviceMap interface {
	DeviceFor(facing media.FacingRequest) string
}

// DeviceMapFunc adapts a function to DeviceMap.
type DeviceMapFunc func(facing media.FacingRequest) string

// DeviceFor calls f.
func (f DeviceMapFunc) DeviceFor(facing media.FacingRequest) string { return f(facing) }

// Option configures a Device.
type Option func(*Device)

// WithDetector sets the detector used to find a substitute device for
// ideal-wrapped facing requests. Defaults to devices.NewDetector().
func WithDetector(d devices.Detector) Option {
	return func(dev *Device) { dev.detector = d }
}

// WithLogger sets the device logger.
func WithLogger(l logging.Logger) Option {
	return func(dev *Device) { dev.logger = l }
}

// Device opens V4L2 capture streams. It satisfies media.Device.
type Device struct {
	devices  DeviceMap
	detector devices.Detector
	logger   logging.Logger
}

// NewDevice creates a device backend that resolves facings through m.
func NewDevice(m DeviceMap, opts ...Option) *Device {
	d := &Device{
		devices:  m,
		detector: devices.NewDetector(),
		logger:   logging.GetLogger("v4l2"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// candidates returns the device paths to try for facing, in order. Strict
// facings only get the mapped device; ideal facings may fall back to the
// first capture device on the host.
func (d *Device) candidates(facing media.ResolvedFacing) []string {
	var paths []string
	if ref := d.devices.DeviceFor(facing.Value); ref != "" {
		if path, err := devices.ResolveDevicePath(ref); err == nil {
			paths = append(paths, path)
		} else {
			d.logger.Warn("Configured device not found", "facing", string(facing.Value), "device", ref, "error", err)
		}
	}
	if !facing.Ideal || d.detector == nil {
		return paths
	}

	found, err := d.detector.FindDevices()
	if err != nil {
		d.logger.Debug("Device enumeration failed", "error", err)
		return paths
	}
	for _, dev := range found {
		if len(paths) == 0 || paths[0] != dev.Path {
			return append(paths, dev.Path)
		}
	}
	return paths
}
