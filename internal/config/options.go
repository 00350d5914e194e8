package config

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smazurov/camtune/internal/logging"
	"github.com/smazurov/camtune/internal/media"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8091" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings. Empty username disables basic auth.
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Camera settings
	CameraFrontDevice string `help:"Front (user) camera: stable device id or /dev path" default:"" toml:"camera.front_device" env:"CAMERA_FRONT_DEVICE"`
	CameraBackDevice  string `help:"Back (environment) camera: stable device id or /dev path" default:"/dev/video0" toml:"camera.back_device" env:"CAMERA_BACK_DEVICE"`
	CameraPlatform    string `help:"Platform class used when a request names none and its User-Agent is not iOS or Android (ios, mobile, desktop)" default:"desktop" toml:"camera.platform" env:"CAMERA_PLATFORM"`

	// Liveness probe settings
	ProbeTimeoutMs   int    `help:"Liveness probe timeout in milliseconds" default:"1000" toml:"probe.timeout_ms" env:"PROBE_TIMEOUT_MS"`
	ProbeSettleMs    int    `help:"Delay between first frame and size sample in milliseconds" default:"100" toml:"probe.settle_ms" env:"PROBE_SETTLE_MS"`
	ProbeFfprobePath string `help:"Path to the ffprobe binary" default:"ffprobe" toml:"probe.ffprobe_path" env:"PROBE_FFPROBE_PATH"`

	// Acquisition settings
	AcquireAttempts     int `help:"Attempts per acquisition when the device is busy" default:"2" toml:"acquire.attempts" env:"ACQUIRE_ATTEMPTS"`
	AcquireRetryDelayMs int `help:"Delay before each acquisition retry in milliseconds" default:"200" toml:"acquire.retry_delay_ms" env:"ACQUIRE_RETRY_DELAY_MS"`

	// Indicator LED. Empty disables it.
	LedName string `help:"Board LED that shows camera activity (e.g. user, act)" default:"" toml:"led.name" env:"LED_NAME"`

	// Hints settings
	HintsFile string `help:"Capability hints file" default:"hints.toml" toml:"hints.file" env:"HINTS_FILE"`

	// Logging settings
	LoggingLevel     string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat    string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingNegotiate string `help:"Negotiation logging level" default:"info" toml:"logging.negotiate" env:"LOGGING_NEGOTIATE"`
	LoggingDevices   string `help:"Devices logging level" default:"info" toml:"logging.devices" env:"LOGGING_DEVICES"`
	LoggingBackend   string `help:"V4L2 backend logging level" default:"info" toml:"logging.v4l2" env:"LOGGING_V4L2"`
	LoggingCapture   string `help:"Capture controller logging level" default:"info" toml:"logging.capture" env:"LOGGING_CAPTURE"`
	LoggingAPI       string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

// Logging returns the logging configuration.
func (o *Options) Logging() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			"negotiate": o.LoggingNegotiate,
			"devices":   o.LoggingDevices,
			"v4l2":      o.LoggingBackend,
			"capture":   o.LoggingCapture,
			"api":       o.LoggingAPI,
			"http":      o.LoggingAPI,
			"config":    o.LoggingLevel,
			"led":       o.LoggingLevel,
		},
	}
}

// Platform parses CameraPlatform.
func (o *Options) Platform() (media.PlatformClass, error) {
	p, err := media.ParsePlatform(o.CameraPlatform)
	if err != nil {
		return "", fmt.Errorf("camera.platform: %w", err)
	}
	return p, nil
}

// AcquireRetryDelay returns AcquireRetryDelayMs as a duration.
func (o *Options) AcquireRetryDelay() time.Duration {
	return time.Duration(o.AcquireRetryDelayMs) * time.Millisecond
}

// Camera returns the reloadable subset of the options.
func (o *Options) Camera() CameraConfig {
	return CameraConfig{
		Config:            o.Config,
		CameraFrontDevice: o.CameraFrontDevice,
		CameraBackDevice:  o.CameraBackDevice,
		ProbeTimeoutMs:    o.ProbeTimeoutMs,
		ProbeSettleMs:     o.ProbeSettleMs,
	}
}

// CameraConfig holds the settings applied without a restart: the facing to
// device mapping and the liveness probe timing. Field names match Options so
// CLI-pinned values survive reloads.
type CameraConfig struct {
	Config            string
	CameraFrontDevice string `toml:"camera.front_device" env:"CAMERA_FRONT_DEVICE"`
	CameraBackDevice  string `toml:"camera.back_device" env:"CAMERA_BACK_DEVICE"`
	ProbeTimeoutMs    int    `toml:"probe.timeout_ms" env:"PROBE_TIMEOUT_MS"`
	ProbeSettleMs     int    `toml:"probe.settle_ms" env:"PROBE_SETTLE_MS"`
}

// DeviceFor returns the configured device for a facing request.
func (c CameraConfig) DeviceFor(facing media.FacingRequest) string {
	if facing == media.FacingFront {
		return c.CameraFrontDevice
	}
	return c.CameraBackDevice
}

// ProbeTimeout returns ProbeTimeoutMs as a duration.
func (c CameraConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMs) * time.Millisecond
}

// ProbeSettle returns ProbeSettleMs as a duration.
func (c CameraConfig) ProbeSettle() time.Duration {
	return time.Duration(c.ProbeSettleMs) * time.Millisecond
}

// CameraLoader returns a Watcher loader that re-reads CameraConfig on top of
// base, leaving fields pinned by cmd's changed flags alone.
func CameraLoader(base CameraConfig, cmd *cobra.Command) func(path string) (CameraConfig, error) {
	return func(path string) (CameraConfig, error) {
		c := base
		c.Config = path
		if err := LoadConfig(&c, cmd); err != nil {
			return CameraConfig{}, err
		}
		return c, nil
	}
}
