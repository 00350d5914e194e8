package led

import (
	"os"
	"strings"

	"github.com/smazurov/camtune/internal/logging"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// boards maps a device tree model substring to the board's LED names.
var boards = []struct {
	model string
	leds  map[string]string
}{
	{"NanoPC-T6", map[string]string{"user": "usr_led", "system": "sys_led"}},
	{"Orange Pi", map[string]string{"blue": "blue_led", "green": "green_led"}},
	{"Raspberry Pi", map[string]string{"act": "ACT", "pwr": "PWR"}},
}

// New returns the controller for the board this runs on, or a no-op
// controller when the board has no known LEDs.
func New(logger logging.Logger) Controller {
	if logger == nil {
		logger = logging.GetLogger("led")
	}
	return forModel(detectBoard(), sysfsLEDPath, logger)
}

func forModel(model, root string, logger logging.Logger) Controller {
	for _, b := range boards {
		if strings.Contains(model, b.model) {
			logger.Info("Using sysfs LED controller", "board_model", model)
			return newSysfs(root, b.leds)
		}
	}
	logger.Info("No LED support detected, using no-op controller", "board_model", model)
	return noop{logger: logger}
}

// detectBoard reads the device tree model, or returns "unknown".
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}
	return strings.TrimRight(string(data), "\x00")
}

type noop struct {
	logger logging.Logger
}

func (n noop) Set(name string, on bool, pattern string) error {
	n.logger.Debug("LED control not available", "led", name, "on", on, "pattern", pattern)
	return nil
}

func (noop) Available() []string { return []string{} }
