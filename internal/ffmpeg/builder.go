package ffmpeg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoDevice is returned when ProbeParams has no device path.
var ErrNoDevice = errors.New("device path is required")

// BuildProbeArgs returns the binary and arguments that make ffprobe decode the
// first frame from the device and print its size as JSON.
func BuildProbeArgs(p *ProbeParams) (string, []string, error) {
	if p.DevicePath == "" {
		return "", nil, ErrNoDevice
	}

	bin := p.Binary
	if bin == "" {
		bin = DefaultProbeBinary
	}
	level := p.LogLevel
	if level == "" {
		level = "warning"
	}

	args := []string{"-hide_banner", "-loglevel", "level+" + level, "-f", "v4l2"}
	if p.InputFormat != "" {
		args = append(args, "-input_format", p.InputFormat)
	}
	if p.Width > 0 && p.Height > 0 {
		args = append(args, "-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height))
	}
	args = append(args,
		"-i", p.DevicePath,
		"-select_streams", "v:0",
		"-read_intervals", "%+#1",
		"-show_entries", "frame=width,height",
		"-of", "json",
	)
	return bin, args, nil
}

// CommandLine renders an invocation for logs. Empty arguments and arguments
// with blanks or quotes are quoted.
func CommandLine(bin string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{bin}, args...) {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
