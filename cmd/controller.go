// Package cmd holds the camtune subcommands and the wiring they share with
// the server.
package cmd

import (
	"github.com/smazurov/camtune/internal/capture"
	"github.com/smazurov/camtune/internal/config"
	"github.com/smazurov/camtune/internal/events"
	"github.com/smazurov/camtune/internal/hints"
	"github.com/smazurov/camtune/internal/v4l2cam"
)

// NewController builds a capture controller on the V4L2 backend. Facing to
// device mapping and probe timing are read from live on every negotiation.
// bus and store may be nil.
func NewController(opts *config.Options, live *config.LiveCamera, bus *events.Bus, store hints.Store) *capture.Controller {
	return capture.New(capture.Options{
		Device:     v4l2cam.NewDevice(live),
		Player:     v4l2cam.NewPlayer(opts.ProbeFfprobePath, nil),
		Hints:      store,
		Bus:        bus,
		Timing:     live,
		Attempts:   opts.AcquireAttempts,
		RetryDelay: opts.AcquireRetryDelay(),
	})
}
