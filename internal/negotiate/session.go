package negotiate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smazurov/camtune/internal/events"
	"github.com/smazurov/camtune/internal/logging"
	"github.com/smazurov/camtune/internal/media"
	"github.com/smazurov/camtune/internal/metrics"
)

// HintRecorder stores the last tier that produced a verified stream for a
// facing request. The session only writes hints.
type HintRecorder interface {
	Set(facing media.FacingRequest, tier media.Range) error
}

// StateChangeCallback is called on every session state transition.
type StateChangeCallback func(sessionID string, oldState, newState State)

// SessionOptions configures a new Session.
type SessionOptions struct {
	// ID identifies the session in logs and events. Generated if empty.
	ID string

	// Platform selects facing normalization and tier order.
	Platform media.PlatformClass

	// Acquirer opens base and fallback streams (required).
	Acquirer *RetryingAcquirer

	// Prober verifies candidate streams (required).
	Prober Prober

	// Hints records the winning tier (optional).
	Hints HintRecorder

	// Status receives camera, weak resolution and progress signals.
	// A private Status is created if nil.
	Status *Status

	// Bus receives the completion event (optional).
	Bus *events.Bus

	// OnStateChange is called on state transitions (optional).
	OnStateChange StateChangeCallback

	// Logger for session operations. If nil, uses the "negotiate" module logger.
	Logger logging.Logger
}

// Result is a successfully negotiated stream. The caller owns Stream and must
// stop it when done.
type Result struct {
	Stream   media.Stream
	Tier     media.Range
	Index    int // position in the tier table, -1 for the fallback stream
	Fallback bool
	Settings media.Settings
}

// Session negotiates one verified stream at a time. It is not safe for
// concurrent use; callers serialize Negotiate calls.
type Session struct {
	id            string
	platform      media.PlatformClass
	acquirer      *RetryingAcquirer
	prober        Prober
	hints         HintRecorder
	status        *Status
	bus           *events.Bus
	onStateChange StateChangeCallback
	logger        logging.Logger

	state  State
	reason Reason
	stream media.Stream
	failed map[CandidateKey]struct{}
}

// NewSession creates a negotiation session.
func NewSession(opts *SessionOptions) *Session {
	s := &Session{
		id:            opts.ID,
		platform:      opts.Platform,
		acquirer:      opts.Acquirer,
		prober:        opts.Prober,
		hints:         opts.Hints,
		status:        opts.Status,
		bus:           opts.Bus,
		onStateChange: opts.OnStateChange,
		logger:        opts.Logger,
		state:         StateInit,
		failed:        make(map[CandidateKey]struct{}),
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.platform == "" {
		s.platform = media.PlatformDesktop
	}
	if s.status == nil {
		s.status = NewStatus(opts.Bus)
	}
	if s.logger == nil {
		s.logger = logging.GetLogger("negotiate")
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Platform returns the platform class the session negotiates for.
func (s *Session) Platform() media.PlatformClass { return s.platform }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Reason returns why the last negotiation failed, or "".
func (s *Session) Reason() Reason { return s.reason }

// Status returns the signal object the session reports to.
func (s *Session) Status() *Status { return s.status }

// IsFailed reports whether key was rejected as over-constrained during the
// current negotiation.
func (s *Session) IsFailed(key CandidateKey) bool {
	_, ok := s.failed[key]
	return ok
}

// Negotiate acquires a stream for facing and upgrades it to the best tier
// that is both accepted by the device and decodes live frames. On failure it
// returns a *NegotiationError and sets the weak resolution signal; no device
// error crosses this boundary.
func (s *Session) Negotiate(ctx context.Context, facing media.FacingRequest) (*Result, error) {
	start := time.Now()
	s.release()
	s.failed = make(map[CandidateKey]struct{})
	s.reason = ""
	s.setState(StateInit)

	resolved := NormalizeFacing(facing, s.platform)
	tiers := TiersFor(s.platform)
	base := media.Constraints{Video: media.VideoConstraints{Facing: resolved}}

	s.logger.Info("Starting stream negotiation",
		"session_id", s.id,
		"facing", string(facing),
		"platform", string(s.platform),
		"resolved_facing", resolved.String(),
		"tiers", len(tiers))

	s.setState(StateAcquiringBase)
	stream, err := s.acquirer.Acquire(ctx, base)
	if err != nil {
		s.logger.Warn("Base stream acquisition failed", "session_id", s.id, "error", err)
		switch {
		case ctx.Err() != nil:
			return s.fail(facing, ReasonCancelled, start)
		case errors.Is(err, media.ErrPermissionDenied):
			s.status.SetCamera(CameraDenied)
			return s.fail(facing, ReasonDenied, start)
		default:
			s.status.SetCamera(CameraNotSupported)
			return s.fail(facing, ReasonUnsupported, start)
		}
	}
	s.hold(stream)
	s.status.SetCamera(CameraGranted)

	track := media.PrimaryTrack(s.stream)
	if track == nil {
		s.logger.Error("Base stream has no video track", "session_id", s.id)
		return s.fail(facing, ReasonNoTrack, start)
	}

	for i := 0; i < len(tiers); {
		if ctx.Err() != nil {
			return s.fail(facing, ReasonCancelled, start)
		}

		s.setState(StateProbing)
		s.status.SetProgress(Progress{Position: i + 1, Total: len(tiers)})

		tier := tiers[i]
		candidate := media.VideoConstraints{Width: tier, Facing: resolved}
		key := KeyOf(candidate)
		if s.IsFailed(key) {
			metrics.ObserveTierAttempt(tier.String(), metrics.TierKnownFailed)
			i++
			continue
		}

		if applyErr := track.ApplyConstraints(ctx, candidate); applyErr != nil {
			switch {
			case ctx.Err() != nil:
				return s.fail(facing, ReasonCancelled, start)

			case errors.Is(applyErr, media.ErrOverConstrained):
				metrics.ObserveTierAttempt(tier.String(), metrics.TierOverConstraint)
				s.logger.Warn("Tier over-constrained, reopening camera",
					"session_id", s.id, "index", i, "tier", tier.String(), "error", applyErr)
				s.failed[key] = struct{}{}
				s.release()

				stream, err = s.acquirer.Acquire(ctx, base)
				if err != nil {
					s.logger.Error("Camera re-acquisition failed", "session_id", s.id, "error", err)
					if ctx.Err() != nil {
						return s.fail(facing, ReasonCancelled, start)
					}
					return s.fail(facing, ReasonReacquireFailed, start)
				}
				s.hold(stream)
				if track = media.PrimaryTrack(s.stream); track == nil {
					return s.fail(facing, ReasonReacquireFailed, start)
				}
				// Same index again on the fresh track; the key is marked so it is skipped.
				continue

			case errors.Is(applyErr, media.ErrPermissionDenied):
				metrics.ObserveTierAttempt(tier.String(), metrics.TierApplyError)
				s.status.SetCamera(CameraDenied)
				return s.fail(facing, ReasonDenied, start)

			default:
				metrics.ObserveTierAttempt(tier.String(), metrics.TierApplyError)
				s.logger.Warn("Applying tier failed, skipping",
					"session_id", s.id, "index", i, "tier", tier.String(), "error", applyErr)
				i++
				continue
			}
		}

		settings := track.Settings()
		s.logger.Debug("Tier applied",
			"session_id", s.id, "index", i, "tier", tier.String(), "settings", settings.String())
		if settings.Width == 0 || settings.Height == 0 {
			metrics.ObserveTierAttempt(tier.String(), metrics.TierZeroSize)
			i++
			continue
		}

		s.setState(StateVerifying)
		if !s.prober.Verify(ctx, s.stream) {
			metrics.ObserveTierAttempt(tier.String(), metrics.TierNotLive)
			s.logger.Warn("Tier delivered no live frames, skipping",
				"session_id", s.id, "index", i, "tier", tier.String(), "settings", settings.String())
			i++
			continue
		}

		metrics.ObserveTierAttempt(tier.String(), metrics.TierLive)
		if s.hints != nil {
			if hintErr := s.hints.Set(facing, tier); hintErr != nil {
				s.logger.Warn("Failed to record capability hint", "session_id", s.id, "error", hintErr)
			}
		}
		return s.succeed(facing, &Result{Tier: tier, Index: i, Settings: settings}, start)
	}

	return s.fallback(ctx, facing, base, start)
}

// fallback makes one plain acquisition with only the facing constraint.
func (s *Session) fallback(ctx context.Context, facing media.FacingRequest, base media.Constraints, start time.Time) (*Result, error) {
	s.logger.Warn("All tiers failed, trying facing-only fallback", "session_id", s.id)
	s.release()

	s.setState(StateFallbackAcquiring)
	stream, err := s.acquirer.AcquireOnce(ctx, base)
	if err != nil {
		s.logger.Warn("Fallback acquisition failed", "session_id", s.id, "error", err)
		if ctx.Err() != nil {
			return s.fail(facing, ReasonCancelled, start)
		}
		return s.fail(facing, ReasonExhausted, start)
	}
	s.hold(stream)

	s.setState(StateFallbackVerifying)
	if !s.prober.Verify(ctx, s.stream) {
		if ctx.Err() != nil {
			return s.fail(facing, ReasonCancelled, start)
		}
		return s.fail(facing, ReasonExhausted, start)
	}

	var settings media.Settings
	if track := media.PrimaryTrack(s.stream); track != nil {
		settings = track.Settings()
	}
	return s.succeed(facing, &Result{Index: -1, Fallback: true, Settings: settings}, start)
}

// succeed hands the held stream to the caller.
func (s *Session) succeed(facing media.FacingRequest, res *Result, start time.Time) (*Result, error) {
	res.Stream = s.stream
	s.stream = nil

	s.setState(StateSucceeded)
	s.status.SetProgress(Progress{})
	s.status.SetWeakResolution(false)

	tier := ""
	if !res.Fallback {
		tier = res.Tier.String()
	}
	elapsed := time.Since(start)
	metrics.ObserveNegotiation(string(facing), string(StateSucceeded), tier, elapsed)
	s.publishCompleted(facing, string(StateSucceeded), tier, res.Settings, elapsed)

	s.logger.Info("Stream negotiated",
		"session_id", s.id,
		"facing", string(facing),
		"tier", tier,
		"fallback", res.Fallback,
		"settings", res.Settings.String(),
		"duration", elapsed)
	return res, nil
}

// fail releases any held stream and reports the terminal reason.
func (s *Session) fail(facing media.FacingRequest, reason Reason, start time.Time) (*Result, error) {
	s.release()
	s.reason = reason
	s.setState(StateFailed)
	s.status.SetProgress(Progress{})
	if reason != ReasonCancelled {
		s.status.SetWeakResolution(true)
	}

	elapsed := time.Since(start)
	metrics.ObserveNegotiation(string(facing), string(reason), "", elapsed)
	s.publishCompleted(facing, string(reason), "", media.Settings{}, elapsed)

	s.logger.Warn("Stream negotiation failed",
		"session_id", s.id,
		"facing", string(facing),
		"reason", string(reason),
		"duration", elapsed)
	return nil, &NegotiationError{Reason: reason}
}

// hold takes ownership of stream, stopping any stream still held.
func (s *Session) hold(stream media.Stream) {
	if s.stream != nil {
		s.stream.Stop()
	}
	s.stream = stream
}

// release stops the held stream, if any.
func (s *Session) release() {
	if s.stream == nil {
		return
	}
	s.stream.Stop()
	s.stream = nil
}

func (s *Session) setState(next State) {
	prev := s.state
	s.state = next
	if prev != next && s.onStateChange != nil {
		s.onStateChange(s.id, prev, next)
	}
}

func (s *Session) publishCompleted(facing media.FacingRequest, outcome, tier string, settings media.Settings, d time.Duration) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.NegotiationCompletedEvent{
		SessionID: s.id,
		Facing:    string(facing),
		Outcome:   outcome,
		Tier:      tier,
		Width:     settings.Width,
		Height:    settings.Height,
		Duration:  d.String(),
		Timestamp: now(),
	})
}
