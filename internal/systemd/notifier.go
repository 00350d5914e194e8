// Package systemd reports service state to systemd through sd_notify:
// readiness, a one-line status and watchdog keepalives. Outside a systemd
// unit every call is a no-op.
package systemd

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/smazurov/camtune/internal/events"
	"github.com/smazurov/camtune/internal/logging"
)

// notifyFunc matches daemon.SdNotify.
type notifyFunc func(unsetEnvironment bool, state string) (bool, error)

// Notifier sends sd_notify messages.
type Notifier struct {
	notify   notifyFunc
	watchdog time.Duration
	logger   logging.Logger
	unsub    []func()
}

// NewNotifier creates a notifier. The watchdog interval is taken from
// WATCHDOG_USEC when the unit enables it.
func NewNotifier(logger logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.GetLogger("systemd")
	}
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		logger.Warn("Invalid systemd watchdog settings", "error", err)
	}
	return &Notifier{notify: daemon.SdNotify, watchdog: interval, logger: logger}
}

// Ready tells systemd startup is complete.
func (n *Notifier) Ready() {
	n.send(daemon.SdNotifyReady)
}

// Stopping tells systemd shutdown has begun.
func (n *Notifier) Stopping() {
	n.send(daemon.SdNotifyStopping)
}

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(format string, args ...any) {
	n.send("STATUS=" + fmt.Sprintf(format, args...))
}

// FollowEvents keeps the status line in step with negotiation results.
func (n *Notifier) FollowEvents(bus *events.Bus) {
	n.unsub = append(n.unsub,
		bus.Subscribe(func(e events.NegotiationCompletedEvent) {
			if e.Outcome == "succeeded" {
				n.Status("Streaming %s at %dx%d", e.Facing, e.Width, e.Height)
			} else {
				n.Status("Negotiation failed for %s: %s", e.Facing, e.Outcome)
			}
		}),
		bus.Subscribe(func(e events.StreamReleasedEvent) {
			n.Status("Idle, %s stream released", e.Facing)
		}),
	)
}

// RunWatchdog pings the systemd watchdog at half its interval until ctx is
// done. It returns at once when the unit has no watchdog.
func (n *Notifier) RunWatchdog(ctx context.Context) {
	if n.watchdog <= 0 {
		return
	}
	ticker := time.NewTicker(n.watchdog / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.send(daemon.SdNotifyWatchdog)
		}
	}
}

// Close stops following events.
func (n *Notifier) Close() {
	for _, unsub := range n.unsub {
		unsub()
	}
	n.unsub = nil
}

func (n *Notifier) send(state string) {
	sent, err := n.notify(false, state)
	if err != nil {
		n.logger.Warn("sd_notify failed", "state", state, "error", err)
		return
	}
	if sent {
		n.logger.Debug("sd_notify sent", "state", state)
	}
}
