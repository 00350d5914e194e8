//go:build linux

package v4l2

import (
	"fmt"
	"sync"
	"unsafe"
)

// Device is an open V4L2 capture node. Holding it open keeps the node busy
// for other processes that want exclusive use of it.
type Device struct {
	path string

	mu     sync.Mutex
	fd     int
	closed bool
}

// Open opens a capture device. The returned error is the raw unix.Errno
// when the kernel refused the open.
func Open(path string) (*Device, error) {
	fd, err := open(path)
	if err != nil {
		return nil, err
	}

	capability, err := queryCapability(fd)
	if err != nil {
		close(fd)
		return nil, err
	}
	if capability.effectiveCaps()&capVideoCapture == 0 {
		close(fd)
		return nil, fmt.Errorf("%s: %w", path, ErrNotCapture)
	}

	return &Device{path: path, fd: fd}, nil
}

// Path returns the device node path.
func (d *Device) Path() string { return d.path }

// Formats lists the pixel formats of the device.
func (d *Device) Formats() ([]FormatInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errClosed
	}
	return enumFormats(d.fd)
}

// Resolutions lists the frame sizes the device offers for a pixel format.
func (d *Device) Resolutions(pixelFormat uint32) ([]Resolution, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errClosed
	}
	return enumFrameSizes(d.fd, pixelFormat)
}

// Format returns the current capture format (VIDIOC_G_FMT).
func (d *Device) Format() (Format, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return Format{}, errClosed
	}

	f := v4l2Format{typ: bufTypeVideoCapture}
	if err := ioctl(d.fd, vidiocGFmt, unsafe.Pointer(&f)); err != nil {
		return Format{}, err
	}
	return f.export(), nil
}

// SetFormat requests a capture format (VIDIOC_S_FMT) and returns the format
// the driver applied, which may differ from the request.
func (d *Device) SetFormat(want Format) (Format, error) {
	return d.setFormat(vidiocSFmt, want)
}

// TryFormat asks which format the driver would apply without changing
// anything (VIDIOC_TRY_FMT).
func (d *Device) TryFormat(want Format) (Format, error) {
	return d.setFormat(vidiocTryFmt, want)
}

func (d *Device) setFormat(req uint, want Format) (Format, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return Format{}, errClosed
	}

	f := v4l2Format{typ: bufTypeVideoCapture}
	f.pix.width = want.Width
	f.pix.height = want.Height
	f.pix.pixelformat = want.PixelFormat
	f.pix.field = fieldAny

	if err := ioctl(d.fd, req, unsafe.Pointer(&f)); err != nil {
		return Format{}, err
	}
	return f.export(), nil
}

// Close releases the device. Safe to call more than once.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return close(d.fd)
}

func (f *v4l2Format) export() Format {
	return Format{
		Width:        f.pix.width,
		Height:       f.pix.height,
		PixelFormat:  f.pix.pixelformat,
		BytesPerLine: f.pix.bytesperline,
		SizeImage:    f.pix.sizeimage,
	}
}
