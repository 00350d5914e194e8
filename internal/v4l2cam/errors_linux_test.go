//go:build linux

package v4l2cam

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/smazurov/camtune/internal/media"
	"github.com/smazurov/camtune/pkg/linuxav/v4l2"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"eacces", syscall.EACCES, media.ErrPermissionDenied},
		{"eperm", syscall.EPERM, media.ErrPermissionDenied},
		{"enoent", syscall.ENOENT, media.ErrNotSupported},
		{"enodev", syscall.ENODEV, media.ErrNotSupported},
		{"enxio", syscall.ENXIO, media.ErrNotSupported},
		{"ebusy", syscall.EBUSY, media.ErrAborted},
		{"einval", syscall.EINVAL, media.ErrOverConstrained},
		{"wrapped errno", fmt.Errorf("ioctl: %w", syscall.EBUSY), media.ErrAborted},
		{"not capture", fmt.Errorf("/dev/video1: %w", v4l2.ErrNotCapture), media.ErrNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("open", tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("classify(%v) = %v, want class %v", tt.err, got, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("classify(%v) lost the cause", tt.err)
			}
		})
	}
}

func TestClassifyUnknown(t *testing.T) {
	classes := []error{media.ErrPermissionDenied, media.ErrNotSupported, media.ErrAborted, media.ErrOverConstrained}

	for _, err := range []error{syscall.EIO, errors.New("odd")} {
		got := classify("apply", err)
		for _, c := range classes {
			if errors.Is(got, c) {
				t.Errorf("classify(%v) matched %v", err, c)
			}
		}
	}
	if classify("x", nil) != nil {
		t.Error("classify(nil) should be nil")
	}
}

func TestOrderFormats(t *testing.T) {
	formats := []v4l2.FormatInfo{
		{PixelFormat: v4l2.PixFmtYUYV},
		{PixelFormat: v4l2.PixFmtH264},
		{PixelFormat: v4l2.PixFmtNV12, Emulated: true},
		{PixelFormat: v4l2.PixFmtMJPEG},
	}
	got := orderFormats(formats)
	want := []uint32{v4l2.PixFmtMJPEG, v4l2.PixFmtYUYV, v4l2.PixFmtH264}
	if len(got) != len(want) {
		t.Fatalf("orderFormats() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("orderFormats()[%d] = %s, want %s", i, v4l2.FormatFourCC(got[i]), v4l2.FormatFourCC(want[i]))
		}
	}
}
