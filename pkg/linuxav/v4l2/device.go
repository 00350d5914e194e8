//go:build linux

package v4l2

import (
	"bytes"
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unsafe"
)

// Scanner enumerates capture nodes. The roots default to the live system and
// can be pointed elsewhere for tests or chroots.
type Scanner struct {
	SysfsRoot string // directory holding one entry per video node
	DevRoot   string // directory holding the device nodes and v4l/by-id
}

// DefaultScanner reads /sys/class/video4linux and /dev.
var DefaultScanner = Scanner{SysfsRoot: "/sys/class/video4linux", DevRoot: "/dev"}

// FindDevices lists the video capture devices of the running system.
func FindDevices() ([]DeviceInfo, error) {
	return DefaultScanner.Scan()
}

// node is one video4linux sysfs entry.
type node struct {
	name  string
	index int
}

// Scan returns every node that can capture video, ordered by sysfs index and
// then by node name so the first entry is stable across calls. Metadata and
// output nodes are skipped.
func (s Scanner) Scan() ([]DeviceInfo, error) {
	nodes, err := s.nodes()
	if err != nil {
		return nil, err
	}

	devices := make([]DeviceInfo, 0, len(nodes))
	for _, n := range nodes {
		info, ok := s.probe(n)
		if ok {
			devices = append(devices, info)
		}
	}
	return devices, nil
}

func (s Scanner) nodes() ([]node, error) {
	entries, err := os.ReadDir(s.SysfsRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.SysfsRoot, err)
	}

	nodes := make([]node, 0, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "video") {
			continue
		}
		nodes = append(nodes, node{
			name:  e.Name(),
			index: readSysfsInt(filepath.Join(s.SysfsRoot, e.Name(), "index")),
		})
	}
	slices.SortFunc(nodes, func(a, b node) int {
		if c := cmp.Compare(a.index, b.index); c != 0 {
			return c
		}
		return cmp.Compare(nodeNumber(a.name), nodeNumber(b.name))
	})
	return nodes, nil
}

func (s Scanner) probe(n node) (DeviceInfo, bool) {
	path := filepath.Join(s.DevRoot, n.name)
	log := slog.With("component", "v4l2", "path", path)

	fd, err := open(path)
	if err != nil {
		log.Debug("Skipping video node", "error", err)
		return DeviceInfo{}, false
	}
	capability, err := queryCapability(fd)
	_ = close(fd)
	if err != nil {
		log.Debug("Skipping video node without capabilities", "error", err)
		return DeviceInfo{}, false
	}

	caps := capability.effectiveCaps()
	if caps&capVideoCapture == 0 {
		return DeviceInfo{}, false
	}

	return DeviceInfo{
		DevicePath: path,
		DeviceName: cstr(capability.card[:]),
		DeviceID:   s.deviceID(n, cstr(capability.busInfo[:])),
		Caps:       caps,
	}, true
}

// deviceID prefers the udev by-id link of the node and otherwise derives an
// id from the bus info in the same shape udev uses.
func (s Scanner) deviceID(n node, busInfo string) string {
	if id := s.stableID(n); id != "" {
		return id
	}
	if strings.HasPrefix(busInfo, "usb-") {
		return fmt.Sprintf("%s-video-index%d", busInfo, n.index)
	}
	return fmt.Sprintf("platform-%s-video-index%d", busInfo, n.index)
}

func (s Scanner) stableID(n node) string {
	dir := filepath.Join(s.DevRoot, "v4l", "by-id")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	suffix := fmt.Sprintf("-video-index%d", n.index)
	for _, e := range entries {
		if e.Type()&os.ModeSymlink == 0 || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		target, err := os.Readlink(filepath.Join(dir, e.Name()))
		if err == nil && filepath.Base(target) == n.name {
			return e.Name()
		}
	}
	return ""
}

// nodeNumber returns N for "videoN", or -1.
func nodeNumber(name string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(name, "video"))
	if err != nil {
		return -1
	}
	return n
}

func readSysfsInt(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	v, _ := strconv.Atoi(strings.TrimSpace(string(data)))
	return v
}

// cstr converts a NUL terminated kernel string.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

func queryCapability(fd int) (*v4l2Capability, error) {
	c := &v4l2Capability{}
	if err := ioctl(fd, vidiocQuerycap, unsafe.Pointer(c)); err != nil {
		return nil, err
	}
	return c, nil
}

// effectiveCaps returns the capabilities of this node rather than the whole
// physical device, when the driver reports them.
func (c *v4l2Capability) effectiveCaps() uint32 {
	if c.capabilities&capDeviceCaps != 0 {
		return c.deviceCaps
	}
	return c.capabilities
}
