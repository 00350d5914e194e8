package v4l2cam

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/smazurov/camtune/internal/ffmpeg"
	"github.com/smazurov/camtune/internal/logging"
	"github.com/smazurov/camtune/internal/media"
)

// ErrNoSource is returned by Attach for streams not opened by this package.
var ErrNoSource = errors.New("stream has no v4l2 source")

// source is implemented by tracks that capture from a device node.
type source interface {
	DevicePath() string
	InputFormat() string
}

type commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Player decodes a frame from a stream's device with ffprobe. It satisfies
// media.Player.
type Player struct {
	binary  string
	logger  logging.Logger
	command commandFunc
}

// NewPlayer creates a player that runs the ffprobe at binary, or
// "ffprobe" from PATH if empty.
func NewPlayer(binary string, logger logging.Logger) *Player {
	if logger == nil {
		logger = logging.GetLogger("capture")
	}
	return &Player{binary: binary, logger: logger, command: exec.CommandContext}
}

// Attach starts decoding the stream's device at size. The surface's frame
// is ready once ffprobe has reported a decoded size; Close stops ffprobe.
func (p *Player) Attach(ctx context.Context, s media.Stream, size media.Settings) (media.Surface, error) {
	src, ok := media.PrimaryTrack(s).(source)
	if !ok {
		return nil, ErrNoSource
	}

	params := &ffmpeg.ProbeParams{
		Binary:      p.binary,
		DevicePath:  src.DevicePath(),
		InputFormat: src.InputFormat(),
		Width:       size.Width,
		Height:      size.Height,
	}
	bin, args, err := ffmpeg.BuildProbeArgs(params)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := p.command(runCtx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", bin, err)
	}
	p.logger.Debug("Decode probe started", "pid", cmd.Process.Pid, "command", ffmpeg.CommandLine(bin, args))

	surf := &surface{
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(surf.done)
		waitErr := cmd.Wait()
		p.logOutput(stderr.String())

		decoded, err := ffmpeg.ParseFrameSize(stdout.Bytes())
		if err != nil {
			if runCtx.Err() == nil {
				p.logger.Debug("Decode probe produced no frame", "device", params.DevicePath, "exit", waitErr, "error", err)
			}
			return
		}
		surf.setDecoded(media.Settings{Width: decoded.Width, Height: decoded.Height})
	}()

	return surf, nil
}

func (p *Player) logOutput(out string) {
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		level, msg := ffmpeg.ParseLogLevel(line)
		if ffmpeg.SlogLevel(level) >= slog.LevelWarn {
			p.logger.Warn("ffprobe", "level", level, "msg", msg)
		} else {
			p.logger.Debug("ffprobe", "level", level, "msg", msg)
		}
	}
}

type surface struct {
	ready  chan struct{}
	done   chan struct{}
	cancel context.CancelFunc

	mu      sync.Mutex
	decoded media.Settings
}

func (s *surface) setDecoded(size media.Settings) {
	s.mu.Lock()
	s.decoded = size
	s.mu.Unlock()
	close(s.ready)
}

func (s *surface) FrameReady() <-chan struct{} { return s.ready }

func (s *surface) Done() <-chan struct{} { return s.done }

func (s *surface) DecodedSize() media.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decoded
}

// Close kills ffprobe if it is still running and waits for it to exit.
func (s *surface) Close() error {
	s.cancel()
	<-s.done
	return nil
}
