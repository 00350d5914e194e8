package ffmpeg

import (
	"log/slog"
	"strings"
)

// ParseLogLevel splits a line printed with "-loglevel level+..." into its
// level and message. Lines look like "[error] msg" or
// "[video4linux2,v4l2 @ 0x55d0] [warning] msg"; the component prefix is kept
// in the message. Unprefixed lines are "info".
func ParseLogLevel(line string) (level, msg string) {
	if len(line) < 3 || line[0] != '[' {
		return "info", line
	}

	end := strings.Index(line, "] ")
	if end == -1 {
		return "info", line
	}
	if first := line[1:end]; isLogLevel(first) {
		return first, line[end+2:]
	}

	component, rest := line[:end+2], line[end+2:]
	if len(rest) > 2 && rest[0] == '[' {
		if next := strings.Index(rest, "] "); next != -1 && isLogLevel(rest[1:next]) {
			return rest[1:next], component + rest[next+2:]
		}
	}
	return "info", line
}

// SlogLevel maps an ffmpeg level name to a slog level.
func SlogLevel(level string) slog.Level {
	switch level {
	case "quiet", "panic", "fatal", "error":
		return slog.LevelError
	case "warning":
		return slog.LevelWarn
	case "verbose", "debug", "trace":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func isLogLevel(s string) bool {
	switch s {
	case "quiet", "panic", "fatal", "error", "warning", "info", "verbose", "debug", "trace":
		return true
	}
	return false
}
