//go:build linux

package v4l2

import "errors"

var errClosed = errors.New("v4l2: device closed")

// ErrNotCapture is returned by Open for nodes without video capture support,
// such as metadata or output nodes of a UVC camera.
var ErrNotCapture = errors.New("v4l2: not a video capture device")
