package ffmpeg

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoFrames means ffprobe finished without decoding a frame.
var ErrNoFrames = errors.New("no decoded frames")

// FrameSize is the size of a decoded frame.
type FrameSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type probeOutput struct {
	Frames []FrameSize `json:"frames"`
}

// ParseFrameSize returns the size of the first frame in ffprobe JSON output
// that reports both dimensions.
func ParseFrameSize(out []byte) (FrameSize, error) {
	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return FrameSize{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	for _, f := range parsed.Frames {
		if f.Width > 0 && f.Height > 0 {
			return f, nil
		}
	}
	return FrameSize{}, ErrNoFrames
}
