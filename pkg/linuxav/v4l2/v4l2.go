//go:build linux

// Package v4l2 provides pure Go bindings to the Video4Linux2 (V4L2) API
// for capture device enumeration, format queries and format negotiation.
//
// This package does not use cgo, enabling simple cross-compilation for
// different Linux architectures (amd64, arm64, arm).
//
// # Device Enumeration
//
// Use FindDevices, or a Scanner rooted elsewhere, to discover capture nodes
// in a stable order:
//
//	devices, err := v4l2.FindDevices()
//	for _, dev := range devices {
//	    fmt.Printf("%s: %s (%s)\n", dev.DevicePath, dev.DeviceName, dev.DeviceID)
//	}
//
// # Format Negotiation
//
// Open a device to read and change its capture format. The driver may adjust
// a requested size; SetFormat returns what it actually applied:
//
//	dev, err := v4l2.Open("/dev/video0")
//	defer dev.Close()
//	sizes, _ := dev.Resolutions(v4l2.PixFmtMJPEG)
//	applied, err := dev.SetFormat(v4l2.Format{Width: 1920, Height: 1080, PixelFormat: v4l2.PixFmtMJPEG})
//
// Errors from the kernel are returned as unix.Errno, an alias of
// syscall.Errno, so callers can match them with errors.Is(err, syscall.EBUSY)
// and similar.
package v4l2
