//go:build linux

// Package hotplug watches kernel uevents on a netlink socket so callers can
// react to capture devices being plugged or unplugged. No cgo or udev daemon
// is needed.
package hotplug

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"golang.org/x/sys/unix"
)

// Actions reported by the kernel that camtune cares about.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
)

// SubsystemVideo4Linux is the subsystem of /dev/videoN nodes.
const SubsystemVideo4Linux = "video4linux"

// Event is one parsed uevent.
type Event struct {
	Action    string
	KObj      string // sysfs path of the kernel object
	Subsystem string
	DevName   string // node name relative to /dev, e.g. "video0"
	Props     map[string]string
}

// Node returns the /dev path of the event's device node, or "".
func (e Event) Node() string {
	if e.DevName == "" {
		return ""
	}
	if strings.HasPrefix(e.DevName, "/") {
		return e.DevName
	}
	return "/dev/" + e.DevName
}

// Monitor receives uevents for a fixed set of subsystems.
type Monitor struct {
	fd         int
	subsystems map[string]struct{}
}

// NewMonitor opens the uevent socket. Only events whose subsystem is listed
// are delivered; with no subsystems every event is.
func NewMonitor(subsystems ...string) (*Monitor, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return nil, err
	}
	if err := unix.Bind(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: 1}); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	// Short receive timeout so Run notices cancellation.
	tv := unix.Timeval{Sec: 1}
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return &Monitor{fd: fd, subsystems: subsystemSet(subsystems)}, nil
}

func subsystemSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Wants reports whether the monitor delivers events for subsystem.
func (m *Monitor) Wants(subsystem string) bool {
	if len(m.subsystems) == 0 {
		return true
	}
	_, ok := m.subsystems[subsystem]
	return ok
}

// Close releases the socket.
func (m *Monitor) Close() error {
	return unix.Close(m.fd)
}

// Run delivers events to out until ctx is done or the socket fails.
// out is closed when Run returns.
func (m *Monitor) Run(ctx context.Context, out chan<- Event) error {
	defer close(out)

	buf := make([]byte, 8192)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, _, err := unix.Recvfrom(m.fd, buf, 0)
		switch {
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return err
		case n == 0:
			continue
		}

		ev, ok := ParseUEvent(buf[:n])
		if !ok || !m.Wants(ev.Subsystem) {
			continue
		}

		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ParseUEvent decodes a "ACTION@KOBJ\0KEY=VALUE\0..." message. Messages
// rebroadcast by udev carry a binary "libudev" header which is skipped.
func ParseUEvent(data []byte) (Event, bool) {
	if bytes.HasPrefix(data, []byte("libudev")) {
		data = skipUdevHeader(data)
	}

	fields := strings.Split(string(data), "\x00")
	action, kobj, found := strings.Cut(fields[0], "@")
	if !found || action == "" {
		return Event{}, false
	}

	ev := Event{Action: action, KObj: kobj, Props: make(map[string]string)}
	for _, f := range fields[1:] {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			continue
		}
		ev.Props[key] = value
		switch key {
		case "SUBSYSTEM":
			ev.Subsystem = value
		case "DEVNAME":
			ev.DevName = value
		}
	}
	return ev, true
}

// skipUdevHeader returns the uevent that follows the libudev header, or data
// unchanged if none is found.
func skipUdevHeader(data []byte) []byte {
	for i := 0; i < len(data)-1; i++ {
		if data[i] != 0 {
			continue
		}
		rest := data[i+1:]
		at, nul := bytes.IndexByte(rest, '@'), bytes.IndexByte(rest, 0)
		if at > 0 && at < 20 && (nul < 0 || at < nul) {
			return rest
		}
	}
	return data
}
