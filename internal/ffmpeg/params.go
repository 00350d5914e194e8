// Package ffmpeg builds ffprobe invocations against V4L2 devices and parses
// what they print.
package ffmpeg

// DefaultProbeBinary is used when no ffprobe path is configured.
const DefaultProbeBinary = "ffprobe"

// ProbeParams describes a single-frame decode of a capture device.
type ProbeParams struct {
	Binary      string // ffprobe executable, DefaultProbeBinary if empty
	DevicePath  string
	InputFormat string // v4l2 input_format such as "mjpeg"; empty lets the driver pick
	Width       int
	Height      int
	LogLevel    string // ffmpeg log level, "warning" if empty
}
