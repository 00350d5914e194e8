//go:build linux

package v4l2cam

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/smazurov/camtune/internal/logging"
	"github.com/smazurov/camtune/internal/media"
	"github.com/smazurov/camtune/pkg/linuxav/v4l2"
)

// preferredFormats are tried in order when picking a pixel format for a size.
var preferredFormats = []uint32{v4l2.PixFmtMJPEG, v4l2.PixFmtYUYV, v4l2.PixFmtNV12}

// Acquire opens the device mapped to c's facing and, if c carries a width
// constraint, applies it before returning.
func (d *Device) Acquire(ctx context.Context, c media.Constraints) (media.Stream, error) {
	if c.Audio {
		return nil, fmt.Errorf("audio capture: %w", media.ErrNotSupported)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paths := d.candidates(c.Video.Facing)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no device for facing %s: %w", c.Video.Facing, media.ErrNotSupported)
	}

	var lastErr error
	for _, path := range paths {
		dev, err := v4l2.Open(path)
		if err != nil {
			lastErr = classify("open "+path, err)
			d.logger.Debug("Open failed", "path", path, "error", lastErr)
			// only a missing device moves on to the next candidate
			if !errors.Is(lastErr, media.ErrNotSupported) {
				return nil, lastErr
			}
			continue
		}

		t := newTrack(dev, d.logger)
		if !c.Video.Width.IsZero() {
			if err := t.ApplyConstraints(ctx, c.Video); err != nil {
				t.Stop()
				return nil, err
			}
		}
		d.logger.Debug("Stream acquired", "path", path, "settings", t.Settings().String())
		return &stream{tracks: []media.Track{t}}, nil
	}
	return nil, lastErr
}

type stream struct {
	tracks []media.Track
}

func (s *stream) VideoTracks() []media.Track { return s.tracks }

func (s *stream) Stop() {
	for _, t := range s.tracks {
		t.Stop()
	}
}

type track struct {
	dev    *v4l2.Device
	logger logging.Logger

	mu       sync.Mutex
	settings media.Settings
	pixfmt   uint32
	stopped  bool
}

func newTrack(dev *v4l2.Device, logger logging.Logger) *track {
	t := &track{dev: dev, logger: logger}
	if f, err := dev.Format(); err == nil {
		t.settings = media.Settings{Width: int(f.Width), Height: int(f.Height)}
		t.pixfmt = f.PixelFormat
	} else {
		logger.Debug("G_FMT failed", "path", dev.Path(), "error", err)
	}
	return t
}

// DevicePath returns the node the track captures from.
func (t *track) DevicePath() string { return t.dev.Path() }

// InputFormat returns the ffmpeg input_format name of the current pixel
// format, or "" if ffmpeg should pick.
func (t *track) InputFormat() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.pixfmt {
	case v4l2.PixFmtMJPEG:
		return "mjpeg"
	case v4l2.PixFmtYUYV:
		return "yuyv422"
	case v4l2.PixFmtNV12:
		return "nv12"
	default:
		return ""
	}
}

func (t *track) ApplyConstraints(ctx context.Context, c media.VideoConstraints) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return fmt.Errorf("apply %s: track stopped: %w", c.Width, media.ErrAborted)
	}

	want, pixfmt, ok := t.pick(c.Width)
	if !ok {
		return fmt.Errorf("apply %s: no matching frame size: %w", c.Width, media.ErrOverConstrained)
	}

	got, err := t.dev.SetFormat(v4l2.Format{
		Width:       uint32(want.Width),
		Height:      uint32(want.Height),
		PixelFormat: pixfmt,
	})
	if err != nil {
		return classify(fmt.Sprintf("apply %s", c.Width), err)
	}

	t.settings = media.Settings{Width: int(got.Width), Height: int(got.Height)}
	t.pixfmt = got.PixelFormat
	t.logger.Debug("Format set",
		"path", t.dev.Path(),
		"constraint", c.Width.String(),
		"requested", fmt.Sprintf("%dx%d", want.Width, want.Height),
		"applied", t.settings.String(),
		"pixel_format", v4l2.FormatFourCC(got.PixelFormat))

	if !satisfies(t.settings.Width, c.Width) {
		return fmt.Errorf("apply %s: driver clamped width to %d: %w", c.Width, t.settings.Width, media.ErrOverConstrained)
	}
	return nil
}

// pick chooses the frame size and pixel format for r. Formats are tried in
// preference order and the first with a qualifying size wins. When the
// driver enumerates nothing the request is sent as-is on the current format.
func (t *track) pick(r media.Range) (Size, uint32, bool) {
	formats, err := t.dev.Formats()
	if err != nil {
		t.logger.Debug("Format enumeration failed", "path", t.dev.Path(), "error", err)
	}

	enumerated := false
	for _, pixfmt := range orderFormats(formats) {
		res, err := t.dev.Resolutions(pixfmt)
		if err != nil || len(res) == 0 {
			continue
		}
		enumerated = true

		sizes := make([]Size, len(res))
		for i, fs := range res {
			sizes[i] = Size{Width: int(fs.Width), Height: int(fs.Height)}
		}
		if s, ok := SelectSize(sizes, r); ok {
			return s, pixfmt, true
		}
	}

	if enumerated {
		return Size{}, 0, false
	}
	if r.IsZero() {
		return Size{Width: t.settings.Width, Height: t.settings.Height}, t.pixfmt, true
	}
	return guessSize(r), t.pixfmt, true
}

// orderFormats returns the non-emulated formats with preferred ones first.
func orderFormats(formats []v4l2.FormatInfo) []uint32 {
	var native []uint32
	for _, f := range formats {
		if !f.Emulated {
			native = append(native, f.PixelFormat)
		}
	}

	ordered := make([]uint32, 0, len(native))
	for _, p := range preferredFormats {
		for _, n := range native {
			if n == p {
				ordered = append(ordered, p)
				break
			}
		}
	}
	for _, n := range native {
		preferred := false
		for _, p := range preferredFormats {
			if n == p {
				preferred = true
				break
			}
		}
		if !preferred {
			ordered = append(ordered, n)
		}
	}
	return ordered
}

func (t *track) Settings() media.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

func (t *track) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	if err := t.dev.Close(); err != nil {
		t.logger.Debug("Close failed", "path", t.dev.Path(), "error", err)
	}
}

func (t *track) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
