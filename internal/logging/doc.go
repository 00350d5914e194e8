// Package logging provides slog loggers with a level per module.
//
// Each module logger writes to every output that is present: stdout (text or
// json) when something is attached to it, the systemd journal when journald
// is reachable, and an in-memory history served by the logs API. Levels live
// in a slog.LevelVar per module, so SetLevel and a later Initialize reach
// loggers that were already handed out.
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"negotiate": "debug"},
//	})
//	log := logging.GetLogger("negotiate").With("session_id", id)
//	log.Info("Tier verified", "tier", tier)
//
// In the journal, attributes become upper case fields:
//
//	journalctl -t camtune MODULE=negotiate
//	journalctl -t camtune SESSION_ID=3f2a -p warning
//
// The matching TOML section:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	negotiate = "debug"
//	v4l2 = "warn"
package logging
