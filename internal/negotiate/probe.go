package negotiate

import (
	"context"
	"math"
	"time"

	"github.com/smazurov/camtune/internal/logging"
	"github.com/smazurov/camtune/internal/media"
	"github.com/smazurov/camtune/internal/metrics"
)

// Liveness defaults.
const (
	DefaultProbeTimeout   = 1000 * time.Millisecond
	DefaultSettleDelay    = 100 * time.Millisecond
	DefaultAreaTolerance  = 0.10
	defaultExpectedWidth  = 640
	defaultExpectedHeight = 480
)

// Prober decides whether a stream delivers real frames.
type Prober interface {
	Verify(ctx context.Context, s media.Stream) bool
}

// LivenessProbe compares the decoded frame area of a stream with the area
// its track reports. A black or degraded stream decodes to a different size
// than the device claims, or never decodes at all.
type LivenessProbe struct {
	player    media.Player
	timeout   time.Duration
	settle    time.Duration
	tolerance float64
	logger    logging.Logger
}

// ProbeOption configures a LivenessProbe.
type ProbeOption func(*LivenessProbe)

// WithProbeTimeout bounds a whole verification. Default 1s.
func WithProbeTimeout(d time.Duration) ProbeOption {
	return func(p *LivenessProbe) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithSettleDelay sets the wait between the first decoded frame and the
// size sample. Default 100ms.
func WithSettleDelay(d time.Duration) ProbeOption {
	return func(p *LivenessProbe) {
		if d >= 0 {
			p.settle = d
		}
	}
}

// WithProbeLogger sets the probe logger.
func WithProbeLogger(l logging.Logger) ProbeOption {
	return func(p *LivenessProbe) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewLivenessProbe creates a probe rendering through player.
func NewLivenessProbe(player media.Player, opts ...ProbeOption) *LivenessProbe {
	p := &LivenessProbe{
		player:    player,
		timeout:   DefaultProbeTimeout,
		settle:    DefaultSettleDelay,
		tolerance: DefaultAreaTolerance,
		logger:    logging.GetLogger("negotiate"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Verify reports whether s decodes frames of the size its primary track
// reports. It never fails: any error, timeout or cancellation is false.
// The playback surface is released before Verify returns.
func (p *LivenessProbe) Verify(ctx context.Context, s media.Stream) bool {
	live := p.verify(ctx, s)
	metrics.ObserveProbe(live)
	return live
}

func (p *LivenessProbe) verify(ctx context.Context, s media.Stream) bool {
	track := media.PrimaryTrack(s)
	if track == nil {
		p.logger.Warn("Liveness probe: stream has no video track")
		return false
	}

	expected := track.Settings()
	if expected.Width == 0 {
		expected.Width = defaultExpectedWidth
	}
	if expected.Height == 0 {
		expected.Height = defaultExpectedHeight
	}

	// One deadline for attach, first frame and settle.
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	surface, err := p.player.Attach(ctx, s, expected)
	if err != nil {
		p.logger.Warn("Liveness probe: attach failed", "error", err)
		return false
	}
	defer func() {
		if closeErr := surface.Close(); closeErr != nil {
			p.logger.Debug("Liveness probe: surface close failed", "error", closeErr)
		}
	}()

	select {
	case <-surface.FrameReady():
	case <-surface.Done():
		// The decoder may exit right after reporting its frame.
		select {
		case <-surface.FrameReady():
		default:
			p.logger.Warn("Liveness probe: decoder stopped without a frame", "expected", expected.String())
			return false
		}
	case <-ctx.Done():
		p.logger.Warn("Liveness probe: no decoded frame before deadline", "expected", expected.String())
		return false
	}

	// The first decoded frame is often a transitional black one.
	if p.settle > 0 {
		settle := time.NewTimer(p.settle)
		defer settle.Stop()
		select {
		case <-settle.C:
		case <-ctx.Done():
			return false
		}
	}

	actual := surface.DecodedSize()
	ok := withinTolerance(actual.Area(), expected.Area(), p.tolerance)
	p.logger.Debug("Liveness probe verdict",
		"expected", expected.String(),
		"actual", actual.String(),
		"live", ok)
	return ok
}

// withinTolerance reports whether actual deviates from expected by at most
// tolerance, relative to expected. A non-positive expected never passes.
func withinTolerance(actual, expected int, tolerance float64) bool {
	if expected <= 0 {
		return false
	}
	diff := math.Abs(float64(actual - expected))
	return diff/float64(expected) <= tolerance
}
