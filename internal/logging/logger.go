package logging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const defaultBufferSize = 1000

// Logger is the subset of *slog.Logger that components depend on, so tests
// can pass a recorder instead.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

// moduleState is one named logger. The LevelVar outlives the logger: loggers
// handed out earlier keep following level changes after Initialize rebuilds
// the handler chain.
type moduleState struct {
	level  *slog.LevelVar
	logger *slog.Logger
}

var (
	mutex       sync.RWMutex
	config      Config
	configured  bool
	modules     = make(map[string]*moduleState)
	rootLevel   = &slog.LevelVar{}
	logBuffer   *RingBuffer
	logCallback LogCallback
)

// Initialize applies config, starts the log history buffer and rebuilds every
// module logger created so far.
func Initialize(c Config) {
	mutex.Lock()
	defer mutex.Unlock()

	config = c
	configured = true
	logBuffer = NewRingBuffer(defaultBufferSize)

	rootLevel.Set(levelFor(""))
	for name, m := range modules {
		m.level.Set(levelFor(name))
		m.logger = newModuleLogger(name, m.level)
	}
	slog.SetDefault(slog.New(createHandler(c.Format, rootLevel)))
}

// GetLogger returns the logger of module, creating it on first use.
func GetLogger(module string) *slog.Logger {
	mutex.RLock()
	m, ok := modules[module]
	mutex.RUnlock()
	if ok {
		return m.logger
	}

	mutex.Lock()
	defer mutex.Unlock()
	if m, ok := modules[module]; ok {
		return m.logger
	}

	m = &moduleState{level: &slog.LevelVar{}}
	m.level.Set(levelFor(module))
	m.logger = newModuleLogger(module, m.level)
	modules[module] = m
	return m.logger
}

// ErrUnknownLevel is returned for level names other than debug, info, warn
// and error.
var ErrUnknownLevel = errors.New("unknown log level")

// SetLevel changes the level of a module logger at runtime. Loggers already
// handed out follow the change.
func SetLevel(module, level string) error {
	parsed, ok := parseLevel(level)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
	GetLogger(module)

	mutex.RLock()
	defer mutex.RUnlock()
	modules[module].level.Set(parsed)
	return nil
}

// Levels returns the current level of every module logger.
func Levels() map[string]string {
	mutex.RLock()
	defer mutex.RUnlock()
	out := make(map[string]string, len(modules))
	for name, m := range modules {
		out[name] = levelToString(m.level.Level())
	}
	return out
}

// GetBuffer returns the log history, or nil before Initialize.
func GetBuffer() *RingBuffer {
	mutex.RLock()
	defer mutex.RUnlock()
	return logBuffer
}

// SetLogCallback registers fn to receive every buffered entry. main uses it
// to publish log events to SSE clients.
func SetLogCallback(fn LogCallback) {
	mutex.Lock()
	defer mutex.Unlock()
	logCallback = fn
}

// levelFor resolves the configured level of module: the module override,
// else the global level, else info. Callers hold mutex.
func levelFor(module string) slog.Level {
	level := slog.LevelInfo
	if !configured {
		return level
	}
	if l, ok := parseLevel(config.Level); ok {
		level = l
	}
	if name, ok := config.Modules[module]; ok {
		if l, ok := parseLevel(name); ok {
			level = l
		}
	}
	return level
}

func newModuleLogger(module string, level slog.Leveler) *slog.Logger {
	return slog.New(createHandler(config.Format, level)).With("module", module)
}

// createHandler builds the output chain for level: stdout when something is
// attached to it, the journal when journald is reachable, and always the
// history buffer. The buffer handler looks up the ring buffer per record, so
// loggers created before Initialize start buffering once it runs.
func createHandler(format string, level slog.Leveler) slog.Handler {
	var handlers []slog.Handler
	if isStdoutAvailable() {
		opts := &slog.HandlerOptions{Level: level}
		if format == "json" {
			handlers = append(handlers, slog.NewJSONHandler(os.Stdout, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(os.Stdout, opts))
		}
	}
	if IsJournalAvailable() {
		handlers = append(handlers, NewJournalHandler(level))
	}
	handlers = append(handlers, NewBufferHandler(level))

	if len(handlers) == 1 {
		return handlers[0]
	}
	return NewMultiHandler(handlers...)
}

// isStdoutAvailable reports whether stdout goes somewhere readable: a
// terminal, pipe, socket or file, but not /dev/null.
func isStdoutAvailable() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	mode := fi.Mode()
	return mode&(os.ModeCharDevice|os.ModeNamedPipe|os.ModeSocket) != 0 || mode.IsRegular()
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}
