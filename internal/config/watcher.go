package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/smazurov/camtune/internal/logging"
)

const defaultDebounce = 1500 * time.Millisecond

// Watcher reloads a configuration file after changes settle and hands the
// result to every listener.
//
// It watches the parent directory rather than the file, so editors that
// save by writing a temp file and renaming it over the original are seen.
type Watcher[T any] struct {
	path     string
	debounce time.Duration
	load     func(path string) (T, error)
	onError  func(error)
	logger   logging.Logger

	mu        sync.Mutex
	listeners map[uint64]func(T)
	nextID    uint64

	fsw      *fsnotify.Watcher
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption[T any] func(*Watcher[T])

// WithDebounce sets how long the file must stay quiet before a reload.
func WithDebounce[T any](d time.Duration) WatcherOption[T] {
	return func(w *Watcher[T]) { w.debounce = d }
}

// WithErrorHandler is called with every failed reload, after it is logged.
func WithErrorHandler[T any](fn func(error)) WatcherOption[T] {
	return func(w *Watcher[T]) { w.onError = fn }
}

// NewConfigWatcher creates a watcher for path. load runs once per settled
// change; a failed load keeps the listeners on the previous value.
func NewConfigWatcher[T any](path string, load func(path string) (T, error), logger logging.Logger, opts ...WatcherOption[T]) *Watcher[T] {
	if logger == nil {
		logger = logging.GetLogger("config")
	}
	w := &Watcher[T]{
		path:      filepath.Clean(path),
		debounce:  defaultDebounce,
		load:      load,
		logger:    logger,
		listeners: make(map[uint64]func(T)),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// OnReload registers fn and returns a function that removes it.
func (w *Watcher[T]) OnReload(fn func(T)) (unsubscribe func()) {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = fn
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		delete(w.listeners, id)
		w.mu.Unlock()
	}
}

// Start begins watching in a background goroutine.
func (w *Watcher[T]) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return err
	}
	w.fsw = fsw

	w.logger.Info("Config watcher started", "path", w.path, "debounce", w.debounce)
	go w.run()
	return nil
}

// Stop ends the watch loop and waits for it. Safe to call more than once.
func (w *Watcher[T]) Stop() error {
	w.stopOnce.Do(func() { close(w.stop) })
	if w.fsw == nil {
		return nil
	}
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher[T]) run() {
	defer close(w.done)

	settle := time.NewTimer(w.debounce)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.touches(ev) {
				continue
			}
			w.logger.Debug("Config file changed", "op", ev.Op.String())
			settle.Reset(w.debounce)
		case <-settle.C:
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", "error", err)
		}
	}
}

// touches reports whether ev may have changed the watched file's content.
func (w *Watcher[T]) touches(ev fsnotify.Event) bool {
	return filepath.Clean(ev.Name) == w.path &&
		ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher[T]) reload() {
	cfg, err := w.load(w.path)
	if err != nil {
		w.logger.Warn("Config reload failed", "path", w.path, "error", err)
		if w.onError != nil {
			w.onError(err)
		}
		return
	}

	w.mu.Lock()
	listeners := make([]func(T), 0, len(w.listeners))
	for _, fn := range w.listeners {
		listeners = append(listeners, fn)
	}
	w.mu.Unlock()

	w.logger.Info("Config reloaded", "path", w.path, "listeners", len(listeners))
	for _, fn := range listeners {
		fn(cfg)
	}
}
