package led

import (
	"sync"

	"github.com/smazurov/camtune/internal/events"
	"github.com/smazurov/camtune/internal/logging"
)

// Indicator mirrors camera activity on one LED. It subscribes to the event
// bus: progress turns the LED to blink, a successful negotiation makes it
// solid, and failures or a released stream switch it off.
type Indicator struct {
	controller Controller
	name       string
	bus        *events.Bus
	logger     logging.Logger

	mu     sync.Mutex
	state  string
	unsubs []func()
}

// Indicator states.
const (
	StateOff       = "off"
	StateBlinking  = "blinking"
	StateStreaming = "streaming"
)

// NewIndicator creates an indicator driving the LED called name.
func NewIndicator(controller Controller, name string, bus *events.Bus, logger logging.Logger) *Indicator {
	if logger == nil {
		logger = logging.GetLogger("led")
	}
	return &Indicator{
		controller: controller,
		name:       name,
		bus:        bus,
		logger:     logger,
	}
}

// Start switches the LED off and begins following events.
func (i *Indicator) Start() {
	i.set(StateOff)

	i.mu.Lock()
	i.unsubs = []func(){
		i.bus.Subscribe(func(e events.NegotiationProgressEvent) {
			if e.Position > 0 {
				i.set(StateBlinking)
			}
		}),
		i.bus.Subscribe(func(e events.NegotiationCompletedEvent) {
			if e.Outcome == "succeeded" {
				i.set(StateStreaming)
			} else {
				i.set(StateOff)
			}
		}),
		i.bus.Subscribe(func(events.StreamReleasedEvent) {
			i.set(StateOff)
		}),
	}
	i.mu.Unlock()
	i.logger.Info("LED indicator started", "led", i.name)
}

// Stop unsubscribes and switches the LED off.
func (i *Indicator) Stop() {
	i.mu.Lock()
	unsubs := i.unsubs
	i.unsubs = nil
	i.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	i.set(StateOff)
}

// State returns the last state written to the LED.
func (i *Indicator) State() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

func (i *Indicator) set(state string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == state {
		return
	}

	var err error
	switch state {
	case StateBlinking:
		err = i.controller.Set(i.name, true, PatternBlink)
	case StateStreaming:
		err = i.controller.Set(i.name, true, PatternSolid)
	default:
		err = i.controller.Set(i.name, false, PatternSolid)
	}
	if err != nil {
		i.logger.Warn("Failed to set LED", "led", i.name, "state", state, "error", err)
		return
	}
	i.state = state
	i.logger.Debug("LED state changed", "led", i.name, "state", state)
}
