package led

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfs drives LEDs through /sys/class/leds.
type sysfs struct {
	root string
	leds map[string]string // name -> sysfs directory
}

func newSysfs(root string, leds map[string]string) *sysfs {
	return &sysfs{root: root, leds: leds}
}

func (s *sysfs) Set(name string, on bool, pattern string) error {
	dir, ok := s.leds[name]
	if !ok {
		return fmt.Errorf("LED %q not supported on this board", name)
	}

	ledPath := filepath.Join(s.root, dir)
	if _, err := os.Stat(ledPath); err != nil {
		return fmt.Errorf("LED %q: %w", name, err)
	}

	if pattern != "" {
		if err := writeAttr(ledPath, "trigger", trigger(pattern)); err != nil {
			return err
		}
	}

	brightness := "0"
	if on {
		brightness = "1"
	}
	return writeAttr(ledPath, "brightness", brightness)
}

func (s *sysfs) Available() []string {
	names := make([]string, 0, len(s.leds))
	for name := range s.leds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// trigger maps a pattern to a kernel LED trigger. Solid uses "none" so the
// brightness write sticks.
func trigger(pattern string) string {
	switch pattern {
	case PatternSolid:
		return "none"
	case PatternBlink:
		return "heartbeat"
	default:
		return pattern
	}
}

func writeAttr(ledPath, attr, value string) error {
	if err := os.WriteFile(filepath.Join(ledPath, attr), []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to set LED %s: %w", attr, err)
	}
	return nil
}
