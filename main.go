package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smazurov/camtune/cmd"
	"github.com/smazurov/camtune/internal/api"
	"github.com/smazurov/camtune/internal/config"
	"github.com/smazurov/camtune/internal/devices"
	"github.com/smazurov/camtune/internal/events"
	"github.com/smazurov/camtune/internal/hints"
	"github.com/smazurov/camtune/internal/led"
	"github.com/smazurov/camtune/internal/logging"
	"github.com/smazurov/camtune/internal/systemd"
	"github.com/smazurov/camtune/internal/version"
)

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *config.Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging before any module logger is created
		logging.Initialize(opts.Logging())
		logger := logging.GetLogger("main")

		platform, err := opts.Platform()
		if err != nil {
			logger.Warn("Invalid default platform, using desktop", "error", err)
		}

		// Create event bus for in-process event handling
		eventBus := events.New()
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		hintStore := hints.NewTOML(opts.HintsFile)
		if loadErr := hintStore.Load(); loadErr != nil {
			logger.Warn("Failed to load capability hints", "file", opts.HintsFile, "error", loadErr)
		}

		live := config.NewLiveCamera(opts.Camera())
		controller := cmd.NewController(opts, live, eventBus, hintStore)
		monitor := devices.NewMonitor(devices.NewDetector(), eventBus)

		// Device mapping and probe timing follow the config file
		watcher := config.NewConfigWatcher(opts.Config, config.CameraLoader(opts.Camera(), cli.Root()), logging.GetLogger("config"))
		watcher.OnReload(func(c config.CameraConfig) {
			live.Store(c)
			logger.Info("Camera settings reloaded",
				"front_device", c.CameraFrontDevice,
				"back_device", c.CameraBackDevice,
				"probe_timeout", c.ProbeTimeout(),
				"probe_settle", c.ProbeSettle())
		})

		server := api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			Controller:        controller,
			Devices:           monitor,
			Hints:             hintStore,
			EventBus:          eventBus,
			PrometheusHandler: promhttp.Handler(),
			DefaultPlatform:   platform,
		})

		var indicator *led.Indicator
		if opts.LedName != "" {
			indicator = led.NewIndicator(led.New(nil), opts.LedName, eventBus, nil)
		}

		notifier := systemd.NewNotifier(nil)

		ctx, cancel := context.WithCancel(context.Background())
		monitorDone := make(chan struct{})

		hooks.OnStart(func() {
			logger.Info("Starting camtune", "version", version.String())

			go func() {
				defer close(monitorDone)
				if runErr := monitor.Run(ctx, devices.NewChangeSource()); runErr != nil && !errors.Is(runErr, context.Canceled) {
					logger.Warn("Device monitor stopped", "error", runErr)
				}
			}()

			if indicator != nil {
				indicator.Start()
			}

			if startErr := watcher.Start(); startErr != nil {
				logger.Warn("Config watcher unavailable, settings will not reload", "path", opts.Config, "error", startErr)
			}

			notifier.FollowEvents(eventBus)
			go notifier.RunWatchdog(ctx)
			notifier.Status("Listening on %s", opts.Port)
			notifier.Ready()

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			notifier.Stopping()
			notifier.Close()
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			// Release the camera after the API stops accepting requests
			controller.Close()

			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}
			cancel()
			<-monitorDone

			if indicator != nil {
				indicator.Stop()
			}
		})
	})

	cli.Root().Use = "camtune"
	cli.Root().Short = "Camera resolution negotiation with live frame verification"
	cli.Root().Version = version.String()

	cli.Root().AddCommand(cmd.CreateNegotiateCmd())
	cli.Root().AddCommand(cmd.CreateDevicesCmd())
	cli.Root().AddCommand(cmd.CreateHintsCmd())
	cli.Root().AddCommand(cmd.CreateVersionCmd())

	// Run the CLI
	cli.Run()
}
