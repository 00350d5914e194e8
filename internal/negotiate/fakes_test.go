package negotiate

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/smazurov/camtune/internal/media"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// trackBehavior decides the outcome of applying c to a track of the given
// generation (0 for the first stream the device opened).
type trackBehavior func(gen int, c media.VideoConstraints) (media.Settings, error)

type fakeTrack struct {
	mu       sync.Mutex
	gen      int
	behavior trackBehavior
	settings media.Settings
	applied  []media.VideoConstraints
	stopped  bool
}

func (t *fakeTrack) ApplyConstraints(_ context.Context, c media.VideoConstraints) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.applied = append(t.applied, c)
	if t.behavior == nil {
		return nil
	}
	s, err := t.behavior(t.gen, c)
	if err != nil {
		return err
	}
	t.settings = s
	return nil
}

func (t *fakeTrack) Settings() media.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

func (t *fakeTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *fakeTrack) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *fakeTrack) appliedConstraints() []media.VideoConstraints {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]media.VideoConstraints(nil), t.applied...)
}

type fakeStream struct {
	tracks []*fakeTrack
}

func (s *fakeStream) VideoTracks() []media.Track {
	out := make([]media.Track, len(s.tracks))
	for i, t := range s.tracks {
		out[i] = t
	}
	return out
}

func (s *fakeStream) Stop() {
	for _, t := range s.tracks {
		t.Stop()
	}
}

func (s *fakeStream) stopped() bool {
	for _, t := range s.tracks {
		if !t.Stopped() {
			return false
		}
	}
	return true
}

// fakeDevice hands out fakeStreams. acquireErrs are returned in order before
// any stream is created; nil entries mean success.
type fakeDevice struct {
	mu          sync.Mutex
	acquireErrs []error
	behavior    trackBehavior
	initial     media.Settings
	noTracks    bool
	calls       []media.Constraints
	streams     []*fakeStream
	// maxOpen is the highest number of unstopped streams seen when a new
	// acquisition started.
	maxOpen int
}

func (d *fakeDevice) Acquire(_ context.Context, c media.Constraints) (media.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	call := len(d.calls)
	d.calls = append(d.calls, c)

	open := 0
	for _, s := range d.streams {
		if !s.stopped() {
			open++
		}
	}
	d.maxOpen = max(d.maxOpen, open)

	if call < len(d.acquireErrs) && d.acquireErrs[call] != nil {
		return nil, d.acquireErrs[call]
	}

	s := &fakeStream{}
	if !d.noTracks {
		s.tracks = []*fakeTrack{{gen: len(d.streams), behavior: d.behavior, settings: d.initial}}
	}
	d.streams = append(d.streams, s)
	return s, nil
}

func (d *fakeDevice) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

// allApplied returns every constraint applied to any track, in order.
func (d *fakeDevice) allApplied() []media.VideoConstraints {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []media.VideoConstraints
	for _, s := range d.streams {
		for _, t := range s.tracks {
			out = append(out, t.appliedConstraints()...)
		}
	}
	return out
}

// fakeProber returns verdicts in order, then the last verdict forever.
type fakeProber struct {
	mu       sync.Mutex
	verdicts []bool
	calls    int
	hook     func(call int)
}

func (p *fakeProber) Verify(_ context.Context, _ media.Stream) bool {
	p.mu.Lock()
	call := p.calls
	p.calls++
	hook := p.hook
	p.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if len(p.verdicts) == 0 {
		return false
	}
	if call < len(p.verdicts) {
		return p.verdicts[call]
	}
	return p.verdicts[len(p.verdicts)-1]
}

func (p *fakeProber) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeHints struct {
	mu    sync.Mutex
	hints map[media.FacingRequest]media.Range
	err   error
}

func newFakeHints() *fakeHints {
	return &fakeHints{hints: make(map[media.FacingRequest]media.Range)}
}

func (h *fakeHints) Set(facing media.FacingRequest, tier media.Range) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.hints[facing] = tier
	return nil
}

func (h *fakeHints) get(facing media.FacingRequest) (media.Range, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.hints[facing]
	return r, ok
}

// fakeSurface is a playback surface whose first frame arrives when ready is
// closed. Closing done simulates the decoder exiting.
type fakeSurface struct {
	mu      sync.Mutex
	ready   chan struct{}
	done    chan struct{}
	decoded media.Settings
	closed  bool
}

func newFakeSurface(decoded media.Settings, ready bool) *fakeSurface {
	s := &fakeSurface{ready: make(chan struct{}), done: make(chan struct{}), decoded: decoded}
	if ready {
		close(s.ready)
	}
	return s
}

func (s *fakeSurface) FrameReady() <-chan struct{} { return s.ready }
func (s *fakeSurface) Done() <-chan struct{}       { return s.done }

func (s *fakeSurface) DecodedSize() media.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decoded
}

func (s *fakeSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSurface) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakePlayer struct {
	mu        sync.Mutex
	surface   *fakeSurface
	err       error
	attached  int
	requested media.Settings
}

func (p *fakePlayer) Attach(_ context.Context, _ media.Stream, size media.Settings) (media.Surface, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attached++
	p.requested = size
	if p.err != nil {
		return nil, p.err
	}
	return p.surface, nil
}

// sizes returns a behavior that reports a fixed size per tier.
func sizes(m map[media.Range]media.Settings) trackBehavior {
	return func(_ int, c media.VideoConstraints) (media.Settings, error) {
		return m[c.Width], nil
	}
}
