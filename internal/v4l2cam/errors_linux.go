//go:build linux

package v4l2cam

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/smazurov/camtune/internal/media"
	"github.com/smazurov/camtune/pkg/linuxav/v4l2"
)

// classify wraps a device error with the media failure class it belongs to.
// Errors that match no class are wrapped as-is.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, v4l2.ErrNotCapture) {
		return fmt.Errorf("%s: %w: %w", op, media.ErrNotSupported, err)
	}

	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch errno {
	case syscall.EACCES, syscall.EPERM:
		return fmt.Errorf("%s: %w: %w", op, media.ErrPermissionDenied, err)
	case syscall.ENOENT, syscall.ENODEV, syscall.ENXIO, syscall.ENOTTY:
		return fmt.Errorf("%s: %w: %w", op, media.ErrNotSupported, err)
	case syscall.EBUSY, syscall.EAGAIN, syscall.EINTR:
		return fmt.Errorf("%s: %w: %w", op, media.ErrAborted, err)
	case syscall.EINVAL, syscall.ERANGE:
		return fmt.Errorf("%s: %w: %w", op, media.ErrOverConstrained, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
