//go:build !linux

package v4l2cam

import (
	"context"
	"fmt"
	"runtime"

	"github.com/smazurov/camtune/internal/media"
)

// Acquire always fails: V4L2 capture only exists on Linux.
func (d *Device) Acquire(_ context.Context, _ media.Constraints) (media.Stream, error) {
	return nil, fmt.Errorf("v4l2 capture on %s: %w", runtime.GOOS, media.ErrNotSupported)
}
