package ffmpeg

import (
	"errors"
	"log/slog"
	"reflect"
	"testing"
)

func TestBuildProbeArgs(t *testing.T) {
	tests := []struct {
		name    string
		params  ProbeParams
		wantBin string
		want    []string
		wantErr bool
	}{
		{
			name:    "defaults",
			params:  ProbeParams{DevicePath: "/dev/video0"},
			wantBin: "ffprobe",
			want: []string{
				"-hide_banner", "-loglevel", "level+warning", "-f", "v4l2",
				"-i", "/dev/video0", "-select_streams", "v:0", "-read_intervals", "%+#1",
				"-show_entries", "frame=width,height", "-of", "json",
			},
		},
		{
			name: "size and format",
			params: ProbeParams{
				Binary: "/usr/local/bin/ffprobe", DevicePath: "/dev/video2",
				InputFormat: "mjpeg", Width: 1920, Height: 1080, LogLevel: "error",
			},
			wantBin: "/usr/local/bin/ffprobe",
			want: []string{
				"-hide_banner", "-loglevel", "level+error", "-f", "v4l2",
				"-input_format", "mjpeg", "-video_size", "1920x1080",
				"-i", "/dev/video2", "-select_streams", "v:0", "-read_intervals", "%+#1",
				"-show_entries", "frame=width,height", "-of", "json",
			},
		},
		{
			name:    "partial size is omitted",
			params:  ProbeParams{DevicePath: "/dev/video0", Width: 1280},
			wantBin: "ffprobe",
			want: []string{
				"-hide_banner", "-loglevel", "level+warning", "-f", "v4l2",
				"-i", "/dev/video0", "-select_streams", "v:0", "-read_intervals", "%+#1",
				"-show_entries", "frame=width,height", "-of", "json",
			},
		},
		{
			name:    "no device",
			params:  ProbeParams{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin, args, err := BuildProbeArgs(&tt.params)
			if tt.wantErr {
				if !errors.Is(err, ErrNoDevice) {
					t.Fatalf("expected ErrNoDevice, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildProbeArgs() error: %v", err)
			}
			if bin != tt.wantBin {
				t.Errorf("binary = %q, want %q", bin, tt.wantBin)
			}
			if !reflect.DeepEqual(args, tt.want) {
				t.Errorf("args = %q\nwant %q", args, tt.want)
			}
		})
	}
}

func TestCommandLine(t *testing.T) {
	bin, args, err := BuildProbeArgs(&ProbeParams{DevicePath: "/dev/video0", Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("BuildProbeArgs() error: %v", err)
	}
	want := "ffprobe -hide_banner -loglevel level+warning -f v4l2 -video_size 640x480 -i /dev/video0 " +
		"-select_streams v:0 -read_intervals %+#1 -show_entries frame=width,height -of json"
	if got := CommandLine(bin, args); got != want {
		t.Errorf("CommandLine() = %q\nwant %q", got, want)
	}

	if got := CommandLine("/opt/ff probe", []string{"-i", ""}); got != `"/opt/ff probe" -i ""` {
		t.Errorf("CommandLine() quoting = %q", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		line      string
		wantLevel string
		wantMsg   string
	}{
		{"[error] Device busy", "error", "Device busy"},
		{"[video4linux2,v4l2 @ 0x55d0] [warning] The driver changed the time per frame",
			"warning", "[video4linux2,v4l2 @ 0x55d0] The driver changed the time per frame"},
		{"[video4linux2,v4l2 @ 0x55d0] no level here", "info", "[video4linux2,v4l2 @ 0x55d0] no level here"},
		{"plain line", "info", "plain line"},
		{"[", "info", "["},
		{"[unterminated", "info", "[unterminated"},
	}
	for _, tt := range tests {
		level, msg := ParseLogLevel(tt.line)
		if level != tt.wantLevel || msg != tt.wantMsg {
			t.Errorf("ParseLogLevel(%q) = (%q, %q), want (%q, %q)", tt.line, level, msg, tt.wantLevel, tt.wantMsg)
		}
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"fatal":   slog.LevelError,
		"error":   slog.LevelError,
		"warning": slog.LevelWarn,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelDebug,
		"trace":   slog.LevelDebug,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := SlogLevel(in); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseFrameSize(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    FrameSize
		wantErr error
	}{
		{
			name: "first frame",
			out:  `{"frames":[{"width":1280,"height":720},{"width":640,"height":480}]}`,
			want: FrameSize{Width: 1280, Height: 720},
		},
		{
			name: "skips incomplete frame",
			out:  `{"frames":[{"width":0,"height":0},{"width":1920,"height":1080}]}`,
			want: FrameSize{Width: 1920, Height: 1080},
		},
		{name: "no frames", out: `{"frames":[]}`, wantErr: ErrNoFrames},
		{name: "empty object", out: `{}`, wantErr: ErrNoFrames},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFrameSize([]byte(tt.out))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFrameSize() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFrameSize() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := ParseFrameSize([]byte("not json")); err == nil || errors.Is(err, ErrNoFrames) {
		t.Errorf("invalid JSON should fail to parse, got %v", err)
	}
}
