// Package capture owns the verified stream of a running camtune instance.
// It runs one negotiation at a time, keeps the stream that won, and exposes
// the status signals the last negotiation produced.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smazurov/camtune/internal/events"
	"github.com/smazurov/camtune/internal/logging"
	"github.com/smazurov/camtune/internal/media"
	"github.com/smazurov/camtune/internal/metrics"
	"github.com/smazurov/camtune/internal/negotiate"
)

// ProbeTiming supplies the liveness probe timings in effect. It is read at
// the start of each negotiation so reloaded settings apply to the next one.
type ProbeTiming interface {
	ProbeTimeout() time.Duration
	ProbeSettle() time.Duration
}

// Options configures a Controller.
type Options struct {
	Device     media.Device           // required
	Player     media.Player           // required
	Hints      negotiate.HintRecorder // optional
	Bus        *events.Bus            // optional
	Timing     ProbeTiming            // optional, package defaults when nil
	Attempts   int                    // base acquisition attempts, default 2
	RetryDelay time.Duration          // delay before a retry, default 200ms
	Logger     logging.Logger
}

// StreamInfo describes the held stream.
type StreamInfo struct {
	SessionID string              `json:"session_id" doc:"Session that negotiated the stream"`
	Facing    media.FacingRequest `json:"facing" doc:"Requested facing mode"`
	Platform  media.PlatformClass `json:"platform" doc:"Platform class used for negotiation"`
	Tier      string              `json:"tier,omitempty" doc:"Winning tier, empty for the fallback stream"`
	Fallback  bool                `json:"fallback" doc:"True when only the facing-only fallback worked"`
	Width     int                 `json:"width" doc:"Delivered width"`
	Height    int                 `json:"height" doc:"Delivered height"`
	Since     time.Time           `json:"since" doc:"When the stream was negotiated"`
}

// Snapshot is the controller state shown to users.
type Snapshot struct {
	Camera         negotiate.CameraStatus `json:"camera" doc:"Camera status: granted, denied, prompt, not-supported"`
	WeakResolution bool                   `json:"weak_resolution" doc:"True when the last negotiation produced no verified stream"`
	Progress       negotiate.Progress     `json:"progress" doc:"Tier progress, {0,0} when idle"`
	State          negotiate.State        `json:"state" doc:"State of the current or last session"`
	Reason         negotiate.Reason       `json:"reason,omitempty" doc:"Failure reason of the last session"`
	Negotiating    bool                   `json:"negotiating" doc:"True while a negotiation runs"`
	Stream         *StreamInfo            `json:"stream,omitempty" doc:"Held stream, absent when none"`
}

type held struct {
	stream media.Stream
	info   StreamInfo
}

// Controller serializes negotiations and holds at most one verified stream.
type Controller struct {
	opts   Options
	status *negotiate.Status
	logger logging.Logger

	// run serializes Negotiate, Release and Close.
	run sync.Mutex

	mu          sync.RWMutex
	current     *held
	state       negotiate.State
	reason      negotiate.Reason
	negotiating bool
	closed      bool
}

// New creates a controller.
func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = logging.GetLogger("capture")
	}
	return &Controller{
		opts:   opts,
		status: negotiate.NewStatus(opts.Bus),
		logger: opts.Logger,
		state:  negotiate.StateInit,
	}
}

// Status returns the shared status signals.
func (c *Controller) Status() *negotiate.Status {
	return c.status
}

// Snapshot returns the current controller state.
func (c *Controller) Snapshot() Snapshot {
	s := c.status.Snapshot()

	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := Snapshot{
		Camera:         s.Camera,
		WeakResolution: s.WeakResolution,
		Progress:       s.Progress,
		State:          c.state,
		Reason:         c.reason,
		Negotiating:    c.negotiating,
	}
	if c.current != nil {
		info := c.current.info
		snap.Stream = &info
	}
	return snap
}

// Current returns the held stream info, or false if none is held.
func (c *Controller) Current() (StreamInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return StreamInfo{}, false
	}
	return c.current.info, true
}

// Negotiate runs a negotiation for facing on platform and keeps the stream
// it produces. A held stream is stopped before the new negotiation starts.
// Concurrent calls queue behind each other. A failed negotiation is an
// *Error with code ErrCodeNegotiationFailed wrapping the
// *negotiate.NegotiationError.
func (c *Controller) Negotiate(ctx context.Context, facing media.FacingRequest, platform media.PlatformClass) (StreamInfo, error) {
	c.run.Lock()
	defer c.run.Unlock()

	if c.isClosed() {
		return StreamInfo{}, NewError(ErrCodeClosed, "controller is shutting down", nil)
	}
	if facing != media.FacingFront && facing != media.FacingBack {
		return StreamInfo{}, NewError(ErrCodeInvalidParams, fmt.Sprintf("unknown facing %q", facing), nil)
	}
	switch platform {
	case media.PlatformIOS, media.PlatformMobile, media.PlatformDesktop:
	default:
		return StreamInfo{}, NewError(ErrCodeInvalidParams, fmt.Sprintf("unknown platform %q", platform), nil)
	}

	c.releaseLocked()

	id := uuid.NewString()
	session := negotiate.NewSession(&negotiate.SessionOptions{
		ID:            id,
		Platform:      platform,
		Acquirer:      c.acquirer(),
		Prober:        c.prober(),
		Hints:         c.opts.Hints,
		Status:        c.status,
		Bus:           c.opts.Bus,
		OnStateChange: c.onStateChange,
		Logger:        logging.GetLogger("negotiate"),
	})

	c.mu.Lock()
	c.negotiating = true
	c.reason = ""
	c.mu.Unlock()

	res, err := session.Negotiate(ctx, facing)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.negotiating = false
	if err != nil {
		c.reason = negotiate.ReasonOf(err)
		return StreamInfo{}, NewError(ErrCodeNegotiationFailed, string(c.reason), err)
	}

	info := StreamInfo{
		SessionID: id,
		Facing:    facing,
		Platform:  session.Platform(),
		Fallback:  res.Fallback,
		Width:     res.Settings.Width,
		Height:    res.Settings.Height,
		Since:     time.Now(),
	}
	if !res.Fallback {
		info.Tier = res.Tier.String()
	}
	c.current = &held{stream: res.Stream, info: info}
	metrics.SetActiveStream(string(facing), info.Width, info.Height)
	return info, nil
}

// Release stops the held stream.
func (c *Controller) Release() (StreamInfo, error) {
	c.run.Lock()
	defer c.run.Unlock()

	info, ok := c.releaseLocked()
	if !ok {
		return StreamInfo{}, NewError(ErrCodeNoStream, "no stream is held", nil)
	}
	return info, nil
}

// Close releases the held stream and rejects further negotiations.
func (c *Controller) Close() {
	c.run.Lock()
	defer c.run.Unlock()

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.releaseLocked()
}

// releaseLocked stops the held stream. The caller holds c.run.
func (c *Controller) releaseLocked() (StreamInfo, bool) {
	c.mu.Lock()
	h := c.current
	c.current = nil
	c.mu.Unlock()

	if h == nil {
		return StreamInfo{}, false
	}

	h.stream.Stop()
	metrics.ClearActiveStream(string(h.info.Facing))
	c.logger.Info("Stream released", "session_id", h.info.SessionID, "facing", string(h.info.Facing))
	if c.opts.Bus != nil {
		c.opts.Bus.Publish(events.StreamReleasedEvent{
			Facing:    string(h.info.Facing),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
	return h.info, true
}

func (c *Controller) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Controller) onStateChange(sessionID string, oldState, newState negotiate.State) {
	c.mu.Lock()
	c.state = newState
	c.mu.Unlock()
	c.logger.Debug("Session state changed", "session_id", sessionID, "from", string(oldState), "to", string(newState))
}

func (c *Controller) acquirer() *negotiate.RetryingAcquirer {
	var opts []negotiate.AcquirerOption
	if c.opts.Attempts > 0 {
		opts = append(opts, negotiate.WithAttempts(c.opts.Attempts))
	}
	if c.opts.RetryDelay > 0 {
		opts = append(opts, negotiate.WithRetryDelay(c.opts.RetryDelay))
	}
	return negotiate.NewRetryingAcquirer(c.opts.Device, opts...)
}

func (c *Controller) prober() *negotiate.LivenessProbe {
	var opts []negotiate.ProbeOption
	if c.opts.Timing != nil {
		opts = append(opts,
			negotiate.WithProbeTimeout(c.opts.Timing.ProbeTimeout()),
			negotiate.WithSettleDelay(c.opts.Timing.ProbeSettle()))
	}
	return negotiate.NewLivenessProbe(c.opts.Player, opts...)
}

// IsNoStream reports whether err means no stream was held.
func IsNoStream(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == ErrCodeNoStream
}
