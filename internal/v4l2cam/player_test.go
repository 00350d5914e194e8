package v4l2cam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/smazurov/camtune/internal/devices"
	"github.com/smazurov/camtune/internal/media"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeDetector []string

func (f fakeDetector) FindDevices() ([]devices.Device, error) {
	out := make([]devices.Device, len(f))
	for i, p := range f {
		out[i] = devices.Device{Path: p}
	}
	return out, nil
}

// sourceTrack is a media.Track that also names a device node.
type sourceTrack struct {
	path   string
	format string
}

func (t *sourceTrack) ApplyConstraints(context.Context, media.VideoConstraints) error { return nil }
func (t *sourceTrack) Settings() media.Settings                                     { return media.Settings{} }
func (t *sourceTrack) Stop()                                                        {}
func (t *sourceTrack) Stopped() bool                                                { return false }
func (t *sourceTrack) DevicePath() string                                           { return t.path }
func (t *sourceTrack) InputFormat() string                                          { return t.format }

type testStream struct{ tracks []media.Track }

func (s testStream) VideoTracks() []media.Track { return s.tracks }
func (s testStream) Stop()                      {}

// TestHelperProcess stands in for ffprobe when run as a child of the tests.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("HELPER_MODE") {
	case "frame":
		fmt.Fprintln(os.Stderr, "[video4linux2,v4l2 @ 0x1] [warning] time per frame changed")
		fmt.Fprint(os.Stdout, `{"frames":[{"width":1280,"height":720}]}`)
		os.Exit(0)
	case "hang":
		time.Sleep(30 * time.Second)
		os.Exit(0)
	default:
		fmt.Fprintln(os.Stderr, "[error] /dev/video7: Device or resource busy")
		os.Exit(1)
	}
}

type recorder struct {
	mu   sync.Mutex
	args []string
}

func (r *recorder) command(mode string) commandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		r.mu.Lock()
		r.args = append([]string{name}, args...)
		r.mu.Unlock()

		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "HELPER_MODE="+mode)
		return cmd
	}
}

func newTestPlayer(r *recorder, mode string) *Player {
	p := NewPlayer("/opt/ffmpeg/bin/ffprobe", discardLogger())
	p.command = r.command(mode)
	return p
}

func cameraStream() media.Stream {
	return testStream{tracks: []media.Track{&sourceTrack{path: "/dev/video7", format: "mjpeg"}}}
}

func TestPlayerReportsDecodedSize(t *testing.T) {
	rec := &recorder{}
	p := newTestPlayer(rec, "frame")

	surf, err := p.Attach(context.Background(), cameraStream(), media.Settings{Width: 1280, Height: 720})
	if err != nil {
		t.Fatalf("Attach() error: %v", err)
	}
	defer surf.Close()

	select {
	case <-surf.FrameReady():
	case <-time.After(10 * time.Second):
		t.Fatal("frame never became ready")
	}
	if got := surf.DecodedSize(); got != (media.Settings{Width: 1280, Height: 720}) {
		t.Errorf("DecodedSize() = %v", got)
	}

	rec.mu.Lock()
	args := rec.args
	rec.mu.Unlock()
	if args[0] != "/opt/ffmpeg/bin/ffprobe" {
		t.Errorf("binary = %q", args[0])
	}
	for _, want := range []string{"/dev/video7", "1280x720", "mjpeg"} {
		if !slices.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
}

func TestPlayerFailedDecodeNeverReady(t *testing.T) {
	p := newTestPlayer(&recorder{}, "busy")

	surf, err := p.Attach(context.Background(), cameraStream(), media.Settings{Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("Attach() error: %v", err)
	}
	if err := surf.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	select {
	case <-surf.FrameReady():
		t.Fatal("frame ready after failed decode")
	default:
	}
	if got := surf.DecodedSize(); got.Width != 0 || got.Height != 0 {
		t.Errorf("DecodedSize() = %v, want zero", got)
	}
}

func TestPlayerDecoderExitClosesDone(t *testing.T) {
	p := newTestPlayer(&recorder{}, "busy")

	surf, err := p.Attach(context.Background(), cameraStream(), media.Settings{Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("Attach() error: %v", err)
	}
	defer surf.Close()

	select {
	case <-surf.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("Done not closed after ffprobe exited")
	}
	select {
	case <-surf.FrameReady():
		t.Fatal("frame ready after ffprobe exited with status 1")
	default:
	}
}

func TestPlayerFrameReadyBeforeDone(t *testing.T) {
	p := newTestPlayer(&recorder{}, "frame")

	surf, err := p.Attach(context.Background(), cameraStream(), media.Settings{Width: 1280, Height: 720})
	if err != nil {
		t.Fatalf("Attach() error: %v", err)
	}
	defer surf.Close()

	<-surf.Done()
	select {
	case <-surf.FrameReady():
	default:
		t.Fatal("Done closed before the decoded frame was published")
	}
}

func TestPlayerCloseKillsProbe(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := newTestPlayer(&recorder{}, "hang")
	surf, err := p.Attach(context.Background(), cameraStream(), media.Settings{Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("Attach() error: %v", err)
	}

	closed := make(chan error, 1)
	go func() { closed <- surf.Close() }()

	select {
	case err := <-closed:
		if err != nil {
			t.Errorf("Close() error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Close did not stop the probe")
	}
}

func TestPlayerContextCancelStopsProbe(t *testing.T) {
	p := newTestPlayer(&recorder{}, "hang")
	ctx, cancel := context.WithCancel(context.Background())

	surf, err := p.Attach(ctx, cameraStream(), media.Settings{})
	if err != nil {
		t.Fatalf("Attach() error: %v", err)
	}
	cancel()

	s := surf.(*surface)
	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		t.Fatal("probe survived context cancellation")
	}
	_ = surf.Close()
}

func TestPlayerRejectsForeignStream(t *testing.T) {
	p := newTestPlayer(&recorder{}, "frame")

	tests := []struct {
		name string
		s    media.Stream
	}{
		{"nil stream", nil},
		{"no tracks", testStream{}},
		{"track without device", testStream{tracks: []media.Track{&foreignTrack{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.Attach(context.Background(), tt.s, media.Settings{}); !errors.Is(err, ErrNoSource) {
				t.Errorf("Attach() error = %v, want ErrNoSource", err)
			}
		})
	}
}

func TestPlayerMissingBinary(t *testing.T) {
	p := NewPlayer("/nonexistent/ffprobe", discardLogger())
	if _, err := p.Attach(context.Background(), cameraStream(), media.Settings{}); err == nil {
		t.Fatal("expected start error")
	}
}

type foreignTrack struct{}

func (foreignTrack) ApplyConstraints(context.Context, media.VideoConstraints) error { return nil }
func (foreignTrack) Settings() media.Settings                                     { return media.Settings{} }
func (foreignTrack) Stop()                                                        {}
func (foreignTrack) Stopped() bool                                                { return false }
