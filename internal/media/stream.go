package media

import "context"

// Track is a live video track granted by a device.
type Track interface {
	// ApplyConstraints asks the device to switch the running track to c.
	ApplyConstraints(ctx context.Context, c VideoConstraints) error
	// Settings returns the currently negotiated capture size.
	Settings() Settings
	// Stop releases the underlying device handle. Safe to call twice.
	Stop()
	Stopped() bool
}

// Stream is a device-granted capture resource holding one or more tracks.
type Stream interface {
	VideoTracks() []Track
	// Stop stops every track of the stream.
	Stop()
}

// Device opens capture streams.
type Device interface {
	Acquire(ctx context.Context, c Constraints) (Stream, error)
}

// Surface is an isolated, non-visible playback target with a stream attached.
type Surface interface {
	// FrameReady is closed once the first frame has been decoded.
	FrameReady() <-chan struct{}
	// Done is closed once the decoder has stopped. A surface whose Done
	// closes before FrameReady will never deliver a frame.
	Done() <-chan struct{}
	// DecodedSize returns the size of the last decoded frame.
	DecodedSize() Settings
	// Close detaches the stream and frees the surface.
	Close() error
}

// Player attaches streams to playback surfaces.
type Player interface {
	// Attach renders s into a new surface sized to size.
	Attach(ctx context.Context, s Stream, size Settings) (Surface, error)
}

// PrimaryTrack returns the first video track of s, or nil.
func PrimaryTrack(s Stream) Track {
	if s == nil {
		return nil
	}
	tracks := s.VideoTracks()
	if len(tracks) == 0 {
		return nil
	}
	return tracks[0]
}
